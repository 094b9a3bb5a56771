package fetcher

// Interface defines the contract for fetching manifest text over the network
type Interface interface {
	// FetchText fetches the resource at url and returns its body as text.
	// A non-200 response or a transport failure is an error; there is no
	// retry and no caching — signed manifest URLs are short-lived.
	FetchText(url string) (string, error)
}
