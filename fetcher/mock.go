package fetcher

// MockFetcher is a mock implementation of the Interface for testing
type MockFetcher struct {
	FetchTextFunc func(url string) (string, error)
}

// FetchText implements Interface.FetchText
func (m *MockFetcher) FetchText(url string) (string, error) {
	if m.FetchTextFunc != nil {
		return m.FetchTextFunc(url)
	}
	return "", nil
}
