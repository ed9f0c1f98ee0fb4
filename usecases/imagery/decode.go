package imagery

import (
	"bytes"
	"image"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/minealert/minealert-backend/models"
)

// Decode checks that the content is an image and decodes it, applying the EXIF orientation.
func Decode(content []byte) (image.Image, string, error) {
	mime := mimetype.Detect(content)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, "", errors.Wrapf(models.ErrUnreadableImage, "content type %s", mime.String())
	}

	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", errors.Wrap(models.ErrUnreadableImage, err.Error())
	}
	return img, mime.String(), nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(err, "could not encode image")
	}
	return buf.Bytes(), nil
}
