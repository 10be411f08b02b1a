// Package attrs reads values back out of slog-style key/value attribute lists.
package attrs

// String returns the string stored under key in a [k1, v1, k2, v2, ...]
// list. Later pairs win, so callers can override a field by appending.
func String(attributes []any, key string) string {
	var out string
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, ok := attributes[i].(string); ok && k == key {
			if v, ok := attributes[i+1].(string); ok {
				out = v
			}
		}
	}
	return out
}

// Activity is the slice of an audit line that is mirrored to the activity log.
type Activity struct {
	Actor     string
	RelatedID string
	Details   string
}

// ActivityOf extracts actor_id, user_id and details. ok is false when no
// actor is named, since activity entries always belong to someone.
func ActivityOf(attributes []any) (Activity, bool) {
	a := Activity{
		Actor:     String(attributes, "actor_id"),
		RelatedID: String(attributes, "user_id"),
		Details:   String(attributes, "details"),
	}
	return a, a.Actor != ""
}
