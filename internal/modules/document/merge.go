package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/edenspa/core/internal/models"
)

// ErrInvalidPartial is returned when a partial carries a value of the wrong shape.
var ErrInvalidPartial = errors.New("invalid partial update")

// documentFields maps each top-level JSON key to its field index path.
var documentFields = indexFields(reflect.TypeOf(models.ConfigDocument{}))

func indexFields(t reflect.Type) map[string][]int {
	out := make(map[string][]int)
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = f.Index
	}
	return out
}

// applyPartial overwrites the top-level fields of doc named in partial.
// Each value replaces the field wholesale. Unknown keys are skipped and the
// tenant password is kept when the partial leaves it out, null or empty.
func applyPartial(doc *models.ConfigDocument, partial map[string]json.RawMessage) error {
	v := reflect.ValueOf(doc).Elem()
	for key, raw := range partial {
		idx, ok := documentFields[key]
		if !ok {
			continue
		}
		if key == models.PasswordKey && isBlankPassword(raw) {
			continue
		}

		field := v.FieldByIndex(idx)
		fresh := reflect.New(field.Type())
		if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPartial, key, err)
		}
		field.Set(fresh.Elem())
	}
	return nil
}

func isBlankPassword(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// ToPartial encodes a value into the top-level key map that Merge accepts.
func ToPartial(v any) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
