package postgres

import "time"

// nullableString maps an empty string to SQL NULL
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableDate maps an empty "2006-01-02" date to SQL NULL
func nullableDate(s string) any {
	return nullableString(s)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// nonNil keeps NOT NULL array columns from receiving NULL for nil slices
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
