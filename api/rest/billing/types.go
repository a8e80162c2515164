package billing

type URLResponse struct {
	URL string `json:"url"`
}
