package logfields

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorAttr(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, KeyError, Error(nil).Key)
}

func TestStringAttrs(t *testing.T) {
	assert.Equal(t, KeyTaskID, TaskID("t1").Key)
	assert.Equal(t, "t1", TaskID("t1").Value.String())
	assert.Equal(t, KeyPath, Path("/tmp").Key)
	assert.Equal(t, KeyEvent, Event("e").Key)
}
