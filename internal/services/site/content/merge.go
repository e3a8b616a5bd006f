package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/agencysite/internal/platform/errors"
)

// mergeTop overwrites every top-level key of base with the matching key of
// overlay. Nested values are replaced, not merged.
func mergeTop(base []byte, overlay []byte) ([]byte, error) {
	if !gjson.ValidBytes(overlay) {
		return nil, fmt.Errorf("overlay is not valid JSON")
	}
	parsed := gjson.ParseBytes(overlay)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("overlay must be a JSON object")
	}
	out := bytes.Clone(base)
	var setErr error
	parsed.ForEach(func(key, value gjson.Result) bool {
		out, setErr = sjson.SetRawBytes(out, escapePath(key.String()), []byte(value.Raw))
		return setErr == nil
	})
	if setErr != nil {
		return nil, fmt.Errorf("merge key: %w", setErr)
	}
	return out, nil
}

// escapePath quotes the gjson path metacharacters in a literal key.
func escapePath(key string) string {
	var b bytes.Buffer
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', ':', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// decodeStrict decodes raw into a fresh T and rejects unknown fields.
func decodeStrict[T any](raw []byte) (T, error) {
	var value T
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&value); err != nil {
		return value, apperrors.Wrap(apperrors.KindInvalidInput, "decode patch", err)
	}
	return value, nil
}

// decodeLenient decodes raw into a fresh T, ignoring unknown fields left by
// older record shapes.
func decodeLenient[T any](raw []byte) (T, error) {
	var value T
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return value, fmt.Errorf("stored value is not a JSON object")
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, err
	}
	return value, nil
}

// patchValue applies a shallow JSON merge of partial over current.
func patchValue[T any](current T, partial []byte) (T, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode current value: %w", err)
	}
	merged, err := mergeTop(raw, partial)
	if err != nil {
		var zero T
		return zero, apperrors.Wrap(apperrors.KindInvalidInput, "merge patch", err)
	}
	return decodeStrict[T](merged)
}
