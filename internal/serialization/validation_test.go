package serialization

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name     string
		tensors  []TensorMeta
		dataSize int64
		errType  string
	}{
		{"valid", []TensorMeta{{Name: "a", Offset: 0, Size: 16}, {Name: "b", Offset: 16, Size: 8}}, 24, ""},
		{"overlap", []TensorMeta{{Name: "a", Offset: 0, Size: 16}, {Name: "b", Offset: 8, Size: 8}}, 24, "offset_overlap"},
		{"out of bounds", []TensorMeta{{Name: "a", Offset: 16, Size: 16}}, 24, "out_of_bounds"},
		{"negative", []TensorMeta{{Name: "a", Offset: -8, Size: 8}}, 24, "negative_offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.dataSize)
			if tt.errType == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, tt.errType, verr.Type)
			}
		})
	}
}

func TestValidateHeader(t *testing.T) {
	good := TensorMeta{Name: "decoder_h1.bias", DType: DTypeFloat64, Shape: []int{2}, Offset: 0, Size: 16}

	assert.NoError(t, ValidateHeader(&Header{Tensors: []TensorMeta{good}}, 16, ValidationStrict))

	wrongDType := good
	wrongDType.DType = "float32"
	assert.Error(t, ValidateHeader(&Header{Tensors: []TensorMeta{wrongDType}}, 16, ValidationNormal))

	wrongSize := good
	wrongSize.Size = 8
	assert.Error(t, ValidateHeader(&Header{Tensors: []TensorMeta{wrongSize}}, 16, ValidationNormal))

	assert.Error(t, ValidateHeader(&Header{Tensors: []TensorMeta{good, good}}, 32, ValidationNormal))

	outOfBounds := good
	outOfBounds.Offset = 8
	assert.NoError(t, ValidateHeader(&Header{Tensors: []TensorMeta{outOfBounds}}, 16, ValidationNormal))
	assert.Error(t, ValidateHeader(&Header{Tensors: []TensorMeta{outOfBounds}}, 16, ValidationStrict))

	assert.NoError(t, ValidateHeader(&Header{Tensors: []TensorMeta{wrongDType}}, 16, ValidationNone))
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, `offset_overlap: tensors "a" and "b": x`, (&ValidationError{Type: "offset_overlap", Tensor: "a", Tensor2: "b", Details: "x"}).Error())
	assert.Equal(t, `invalid_name: tensor "a": x`, (&ValidationError{Type: "invalid_name", Tensor: "a", Details: "x"}).Error())
	assert.Equal(t, "too_many_tensors: x", (&ValidationError{Type: "too_many_tensors", Details: "x"}).Error())
}
