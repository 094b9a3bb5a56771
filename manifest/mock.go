package manifest

// MockLoader is a mock implementation of the Loader interface for testing
type MockLoader struct {
	LoadFunc    func(ctx LoadContext, config LoadConfig, callbacks LoadCallbacks)
	AbortFunc   func()
	DestroyFunc func()
}

// Load implements Loader.Load
func (m *MockLoader) Load(ctx LoadContext, config LoadConfig, callbacks LoadCallbacks) {
	if m.LoadFunc != nil {
		m.LoadFunc(ctx, config, callbacks)
	}
}

// Abort implements Loader.Abort
func (m *MockLoader) Abort() {
	if m.AbortFunc != nil {
		m.AbortFunc()
	}
}

// Destroy implements Loader.Destroy
func (m *MockLoader) Destroy() {
	if m.DestroyFunc != nil {
		m.DestroyFunc()
	}
}
