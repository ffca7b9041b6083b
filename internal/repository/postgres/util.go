package postgres

// nullLimit maps the unbounded sentinel to SQL NULL, which LIMIT treats as ALL.
func nullLimit(limit int) *int {
	if limit < 0 {
		return nil
	}
	return &limit
}
