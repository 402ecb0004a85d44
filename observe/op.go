package observe

// OpMeta describes an instrumented operation.
type OpMeta struct {
	Component string // Owning component, e.g. "session" (optional)
	Name      string // Operation name, e.g. "validate" (required)
}

// OpID returns component.name, or name alone.
func (m OpMeta) OpID() string {
	if m.Component != "" {
		return m.Component + "." + m.Name
	}
	return m.Name
}

// SpanName returns the span name: auth.op.<component>.<name>.
func (m OpMeta) SpanName() string {
	return "auth.op." + m.OpID()
}

// Validate checks the required fields.
func (m OpMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingOpName
	}
	return nil
}
