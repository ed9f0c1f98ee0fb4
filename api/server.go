package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/minealert/minealert-backend/usecases"
)

type Option func(*options)

func WithLocalTest(localTest bool) Option {
	return func(o *options) {
		o.localTest = localTest
	}
}

type options struct {
	localTest bool
}

func applyOptions(opts []Option) *options {
	o := &options{
		localTest: false,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func NewServer(router *gin.Engine, conf Configuration, uc usecases.Usecases, opts ...Option) *http.Server {
	o := applyOptions(opts)

	addRoutes(router, conf, uc)

	host := "0.0.0.0"
	if o.localTest {
		host = "localhost"
	}

	// Leave some headroom over the route timeouts so that they answer before the server cuts the connection
	maxTimeout := max(conf.DefaultTimeout, conf.ImageryTimeout) + 5*time.Second

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", host, conf.Port),
		WriteTimeout: maxTimeout,
		ReadTimeout:  maxTimeout,
		IdleTimeout:  maxTimeout,
		Handler:      h2c.NewHandler(router, &http2.Server{}),
	}
}
