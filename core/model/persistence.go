package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// The artifact logger serializes fitted models, scalers and encoders with
// gob. Concrete estimator types must be registered with gob by their
// package (the built-in classifiers do this in init).

// Encode serializes a fitted model into a byte slice.
func Encode(model interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(model, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo serializes a fitted model to w.
func EncodeTo(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// Decode deserializes a model from a byte slice into model, which must be
// a pointer to the concrete type that was encoded.
func Decode(model interface{}, data []byte) error {
	return DecodeFrom(model, bytes.NewReader(data))
}

// DecodeFrom deserializes a model from r.
func DecodeFrom(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
