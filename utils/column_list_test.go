package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type columnListFixture struct {
	Id      string `db:"id"`
	Name    string `db:"name"`
	Skipped string `db:"-"`
	NoTag   string
}

func TestColumnList(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, ColumnList[columnListFixture]())
	assert.Equal(t, []string{"d.id", "d.name"}, ColumnList[columnListFixture]("d"))
}
