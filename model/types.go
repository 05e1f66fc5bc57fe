package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/openrouter-mcp/catalog"
)

// JSONStringSlice stores a string slice as JSON in the database.
type JSONStringSlice []string

// Value converts the JSONStringSlice into a driver value.
func (s JSONStringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal([]string(s))
	if err != nil {
		return nil, errors.Wrap(err, "marshal json string slice")
	}
	return string(payload), nil
}

// Scan populates the JSONStringSlice from a database value.
func (s *JSONStringSlice) Scan(value any) error {
	if s == nil {
		return errors.New("json string slice scan: nil receiver")
	}
	data, err := scanBytes(value, "json string slice")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*s = nil
		return nil
	}

	var decoded []string
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "unmarshal json string slice")
	}
	if len(decoded) == 0 {
		*s = nil
		return nil
	}
	*s = JSONStringSlice(decoded)
	return nil
}

// JSONStringMap stores a string map as JSON in the database.
type JSONStringMap map[string]string

// Value converts the JSONStringMap into a driver value.
func (m JSONStringMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, errors.Wrap(err, "marshal json string map")
	}
	return string(payload), nil
}

// Scan populates the JSONStringMap from a database value.
func (m *JSONStringMap) Scan(value any) error {
	if m == nil {
		return errors.New("json string map scan: nil receiver")
	}
	data, err := scanBytes(value, "json string map")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}

	decoded := make(map[string]string)
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "unmarshal json string map")
	}
	if len(decoded) == 0 {
		*m = nil
		return nil
	}
	*m = JSONStringMap(decoded)
	return nil
}

// ArchitectureJSON stores a model architecture as JSON in the database.
type ArchitectureJSON catalog.Architecture

// Value converts the ArchitectureJSON into a driver value.
func (a ArchitectureJSON) Value() (driver.Value, error) {
	payload, err := json.Marshal(catalog.Architecture(a))
	if err != nil {
		return nil, errors.Wrap(err, "marshal architecture")
	}
	if string(payload) == "{}" {
		return nil, nil
	}
	return string(payload), nil
}

// Scan populates the ArchitectureJSON from a database value.
func (a *ArchitectureJSON) Scan(value any) error {
	if a == nil {
		return errors.New("architecture scan: nil receiver")
	}
	data, err := scanBytes(value, "architecture")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*a = ArchitectureJSON{}
		return nil
	}

	var decoded catalog.Architecture
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "unmarshal architecture")
	}
	*a = ArchitectureJSON(decoded)
	return nil
}

// PricingJSON stores a pricing struct as JSON in the database.
type PricingJSON catalog.Pricing

// Value converts the PricingJSON into a driver value.
func (p PricingJSON) Value() (driver.Value, error) {
	payload, err := json.Marshal(catalog.Pricing(p))
	if err != nil {
		return nil, errors.Wrap(err, "marshal pricing")
	}
	return string(payload), nil
}

// Scan populates the PricingJSON from a database value.
func (p *PricingJSON) Scan(value any) error {
	if p == nil {
		return errors.New("pricing scan: nil receiver")
	}
	data, err := scanBytes(value, "pricing")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*p = PricingJSON{}
		return nil
	}

	var decoded catalog.Pricing
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "unmarshal pricing")
	}
	*p = PricingJSON(decoded)
	return nil
}

// TopProviderJSON stores top-provider limits as JSON in the database.
type TopProviderJSON struct {
	Provider *catalog.TopProvider
}

// Value converts the TopProviderJSON into a driver value.
func (t TopProviderJSON) Value() (driver.Value, error) {
	if t.Provider == nil {
		return nil, nil
	}
	payload, err := json.Marshal(t.Provider)
	if err != nil {
		return nil, errors.Wrap(err, "marshal top provider")
	}
	return string(payload), nil
}

// Scan populates the TopProviderJSON from a database value.
func (t *TopProviderJSON) Scan(value any) error {
	if t == nil {
		return errors.New("top provider scan: nil receiver")
	}
	data, err := scanBytes(value, "top provider")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		t.Provider = nil
		return nil
	}

	var decoded catalog.TopProvider
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "unmarshal top provider")
	}
	t.Provider = &decoded
	return nil
}

func scanBytes(value any, what string) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.Errorf("%s scan: unsupported type %T", what, value)
	}
}
