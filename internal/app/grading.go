package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"livequiz-service/internal/domain"
)

// Grade reports whether value is a correct answer to q. It is a pure function
// and never fails: a value of the wrong shape (wrong type, missing keys,
// out-of-range index) is simply not correct. Clients send arbitrary JSON, so
// the helpers below tolerate the usual decoding shapes (float64 for numbers,
// map[string]any for objects).
func Grade(q domain.Question, value any) bool {
	switch q.Kind {
	case domain.KindMultipleChoice:
		idx, ok := asIndex(value)
		return ok && idx == q.CorrectIndex
	case domain.KindFillBlank:
		text, ok := asText(value)
		if !ok {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(q.Expected))
	case domain.KindMatch:
		return gradeMatch(q.Pairs, value)
	default:
		return false
	}
}

// gradeMatch is all-or-nothing: the submitted mapping must pair every item
// with exactly its canonical target, with no entries missing or extra.
func gradeMatch(pairs []domain.MatchPair, value any) bool {
	submitted, ok := asStringMap(value)
	if !ok || len(submitted) != len(pairs) {
		return false
	}
	for _, p := range pairs {
		target, ok := submitted[p.Item]
		if !ok || target != p.Target {
			return false
		}
	}
	return true
}

func asIndex(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func asText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func asStringMap(value any) (map[string]string, bool) {
	switch v := value.(type) {
	case map[string]string:
		return v, true
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	default:
		return nil, false
	}
}
