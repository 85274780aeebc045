// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	if Wrap(nil, "msg") != nil {
		t.Error("Wrap(nil, msg) should return nil")
	}
	err := errors.New("base")
	wrapped := Wrap(err, "context")
	if wrapped == nil {
		t.Fatal("Wrap(err, msg) should not return nil")
	}
	if !errors.Is(wrapped, err) {
		t.Error("wrapped error should unwrap to base")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "format %s", "x") != nil {
		t.Error("Wrapf(nil, ...) should return nil")
	}
	err := errors.New("base")
	wrapped := Wrapf(err, "id=%s", "a")
	if wrapped == nil {
		t.Fatal("Wrapf(err, ...) should not return nil")
	}
	if !errors.Is(wrapped, err) {
		t.Error("wrapped error should unwrap to base")
	}
	assert.Equal(t, "id=a: base", wrapped.Error())
}

func TestError_MessageAndUnwrap(t *testing.T) {
	base := errors.New("connection reset")
	e := WithKind(KindNetwork, base)
	require.NotNil(t, e)
	assert.Equal(t, "connection reset", e.Error())
	assert.True(t, errors.Is(e, base))
	assert.Nil(t, WithKind(KindNetwork, nil))

	e = New(KindEmpty, "no choices for model %s", "m")
	assert.Equal(t, "no choices for model m", e.Error())
	assert.Equal(t, KindEmpty, e.Kind)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "canceled", err: fmt.Errorf("call: %w", context.Canceled), want: KindCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTimeout},
		{name: "op error", err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, want: KindNetwork},
		{name: "already typed", err: fmt.Errorf("wrap: %w", New(KindStatus, "502")), want: KindStatus},
		{name: "plain", err: errors.New("boom"), want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err).Kind)
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
	assert.Nil(t, Classify(nil))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestSentinels(t *testing.T) {
	if !errors.Is(ErrNotFound, ErrNotFound) {
		t.Error("ErrNotFound should be Is ErrNotFound")
	}
	if !Is(Wrap(ErrInvalidArg, "x"), ErrInvalidArg) {
		t.Error("wrapped ErrInvalidArg should be Is ErrInvalidArg")
	}
}
