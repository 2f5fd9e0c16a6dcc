package pipeline

import "context"

// mockStep is a simple mock implementation of the Step interface for testing
type mockStep struct {
	name      string
	applyFunc func(*Frame) error
	calls     int
}

func (m *mockStep) Name() string {
	return m.name
}

func (m *mockStep) Apply(_ context.Context, frame *Frame) error {
	m.calls++
	if m.applyFunc != nil {
		return m.applyFunc(frame)
	}
	return nil
}

func newMockStep(name string) *mockStep {
	return &mockStep{name: name}
}

func newMockStepWithError(name string, err error) *mockStep {
	return &mockStep{
		name: name,
		applyFunc: func(*Frame) error {
			return err
		},
	}
}
