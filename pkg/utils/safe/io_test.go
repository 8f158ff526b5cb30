package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/utils/safe"
)

type failingCloser struct{ called bool }

func (x *failingCloser) Close() error {
	x.called = true
	return errors.New("close failed")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	safe.Close(ctx, nil)

	c := &failingCloser{}
	safe.Close(ctx, c)
	gt.Bool(t, c.called).True()
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	safe.Write(ctx, nil, []byte("x"))
	safe.Write(ctx, failingWriter{}, []byte("x"))

	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("hello"))
	gt.Value(t, buf.String()).Equal("hello")
}
