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

package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineError_Error(t *testing.T) {
	t.Run("no cause", func(t *testing.T) {
		e := NewPipelineError(StageDecode, "bad image", nil)
		if s := e.Error(); s != "[Pipeline] decode 阶段错误: bad image" {
			t.Errorf("Error() = %q", s)
		}
		if !errors.As(e, new(*PipelineError)) {
			t.Error("should be *PipelineError")
		}
	})
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("io error")
		e := NewPipelineError(StageCaption, "remote", cause)
		assert.Contains(t, e.Error(), "io error")
		if e.Unwrap() != cause {
			t.Error("Unwrap() should return cause")
		}
	})
}

func TestPipelineError_IsStage(t *testing.T) {
	decode := fmt.Errorf("analyze: %w", NewPipelineError(StageDecode, "x", nil))
	caption := NewPipelineError(StageCaption, "y", context.Canceled)

	assert.ErrorIs(t, decode, ErrDecodeFailed)
	assert.NotErrorIs(t, decode, ErrCaptionFailed)
	assert.ErrorIs(t, caption, ErrCaptionFailed)
	assert.ErrorIs(t, caption, context.Canceled)

	got, ok := GetPipelineError(decode)
	assert.True(t, ok)
	assert.Equal(t, StageDecode, got.Stage)
	_, ok = GetPipelineError(errors.New("other"))
	assert.False(t, ok)
}

func TestValidationError(t *testing.T) {
	e := NewMissingFieldError("body", "file")
	assert.Equal(t, []string{"body", "file"}, e.Location)
	assert.Equal(t, "missing", e.Type)
	assert.Equal(t, "Field required", e.Message)

	got, ok := GetValidationError(fmt.Errorf("wrap: %w", e))
	assert.True(t, ok)
	assert.Same(t, e, got)
	_, ok = GetValidationError(errors.New("other"))
	assert.False(t, ok)
}

func TestPipelineContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))

	pc := NewPipelineContext(ctx, RequestID(ctx))
	assert.Equal(t, "req-1", pc.ID)
	assert.Equal(t, StageDecode, pc.Stage)
	pc.Enter(StageCaption)
	assert.Equal(t, StageCaption, pc.Stage)
	assert.GreaterOrEqual(t, pc.Elapsed().Nanoseconds(), int64(0))
}
