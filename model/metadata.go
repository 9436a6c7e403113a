package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/siherrmann/catalog/helper"
)

// Metadata holds free-form attributes of a catalog entity (credits, grade level, ...).
// It is stored as JSONB.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return m.unmarshal(v)
	case string:
		return m.unmarshal([]byte(v))
	case Metadata:
		*m = v
		return nil
	default:
		return helper.NewError("metadata scan", fmt.Errorf("unsupported type %T", value))
	}
}

func (m *Metadata) unmarshal(b []byte) error {
	parsed := Metadata{}
	if err := json.Unmarshal(b, &parsed); err != nil {
		return helper.NewError("metadata unmarshal", err)
	}
	*m = parsed
	return nil
}

// String returns the value of key if it is a string.
func (m Metadata) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}
