package storage

import (
	"fmt"
	"wish-wall/domain/document"
	"wish-wall/errors"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeFields serializes document fields as a protobuf Struct.
// Numbers come back as float64 once decoded.
func encodeFields(fields document.Fields) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)
	}
	return proto.Marshal(s)
}

func decodeFields(b []byte) (document.Fields, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedDocument, err)
	}
	return s.AsMap(), nil
}
