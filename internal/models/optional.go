package models

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalUUID is a patch field that tells "absent" apart from an explicit
// null. Set is true when the key was present in the JSON body.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON records presence and accepts null or a UUID string.
func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
