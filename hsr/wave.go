package hsr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// monsterKeyPrefix marks the sparse per-wave enemy fields: "Monster0",
// "Monster1", and so on. The ordinal carries no meaning beyond ordering
// and is not assumed contiguous.
const monsterKeyPrefix = "Monster"

// rawField is one key/value pair of a JSON object, in emission order.
type rawField struct {
	key   string
	value json.RawMessage
}

// orderedFields decodes a JSON object into its fields in the order the
// source emitted them. A plain map would lose that order.
func orderedFields(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading object open: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []rawField
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		fields = append(fields, rawField{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object close: %w", err)
	}
	return fields, nil
}

// extractEnemyIDs collects the integer values of every Monster<N> key in a
// raw wave object, in the order the source emitted the keys. Keys with
// non-integer values are skipped.
func extractEnemyIDs(rawWave []byte) ([]int64, error) {
	fields, err := orderedFields(rawWave)
	if err != nil {
		return nil, fmt.Errorf("scanning wave: %w", err)
	}

	var ids []int64
	for _, f := range fields {
		if !strings.HasPrefix(f.key, monsterKeyPrefix) {
			continue
		}
		id, ok := integerValue(f.value)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// integerValue reports whether raw is a bare integral JSON number and
// returns it. Floats, strings, and compound values are rejected.
func integerValue(raw json.RawMessage) (int64, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0, false
	}
	id, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeWave parses one raw wave object into its enemy-id list and HP
// multiplier (default 0 when absent or null).
func decodeWave(rawWave []byte) (EndgameWave, error) {
	ids, err := extractEnemyIDs(rawWave)
	if err != nil {
		return EndgameWave{}, err
	}

	var meta struct {
		HPMultiplier float64 `json:"HPMultiplier"`
	}
	if err := json.Unmarshal(rawWave, &meta); err != nil {
		return EndgameWave{}, fmt.Errorf("parsing wave: %w", err)
	}

	return EndgameWave{EnemyIDs: ids, HPMultiplier: meta.HPMultiplier}, nil
}
