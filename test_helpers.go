package llmstream

// Pointer helpers for building request params in tests and examples.

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func float64Ptr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }
