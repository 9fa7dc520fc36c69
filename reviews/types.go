package reviews

// Upstream payload. Only the fields the proxy reads are declared.

type UpstreamResponse struct {
	Domain       string           `json:"domain"`
	BusinessUnit *BusinessUnit    `json:"businessUnit"`
	Reviews      []UpstreamReview `json:"reviews"`
	Filters      *Filters         `json:"filters"`
}

type BusinessUnit struct {
	ID              string  `json:"id"`
	DisplayName     string  `json:"displayName"`
	IdentifyingName string  `json:"identifyingName"`
	NumberOfReviews int     `json:"numberOfReviews"`
	TrustScore      float64 `json:"trustScore"`
	WebsiteURL      string  `json:"websiteUrl"`
	Stars           float64 `json:"stars"`
}

type UpstreamReview struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Text     string       `json:"text"`
	Rating   int          `json:"rating"`
	Likes    int          `json:"likes"`
	Language string       `json:"language"`
	Dates    *ReviewDates `json:"dates"`
	Consumer *Consumer    `json:"consumer"`
}

type ReviewDates struct {
	ExperiencedDate string  `json:"experiencedDate"`
	PublishedDate   string  `json:"publishedDate"`
	UpdatedDate     *string `json:"updatedDate"`
	SubmittedDate   *string `json:"submittedDate"`
}

type Consumer struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	ImageURL        string `json:"imageUrl"`
	NumberOfReviews int    `json:"numberOfReviews"`
	CountryCode     string `json:"countryCode"`
	HasImage        bool   `json:"hasImage"`
	IsVerified      bool   `json:"isVerified"`
}

type Filters struct {
	Pagination                   *Pagination `json:"pagination"`
	TotalNumberOfReviews         int         `json:"totalNumberOfReviews"`
	TotalNumberOfFilteredReviews int         `json:"totalNumberOfFilteredReviews"`
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// Normalized shape served to the carousel widget.

// ReviewsData is one page of normalized reviews plus company summary
type ReviewsData struct {
	Reviews    []Review    `json:"reviews"`
	Pagination PageInfo    `json:"pagination"`
	Company    CompanyInfo `json:"company"`
}

type Review struct {
	ID       string `json:"id"`
	Author   Author `json:"author"`
	Rating   int    `json:"rating"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Verified bool   `json:"verified"`
	Helpful  int    `json:"helpful"`
	Reply    *Reply `json:"reply,omitempty"`
}

type Author struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Location string `json:"location,omitempty"`
}

type Reply struct {
	Content string `json:"content"`
	Date    string `json:"date"`
	Author  string `json:"author"`
}

type PageInfo struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalReviews int `json:"total_reviews"`
	PerPage      int `json:"per_page"`
}

type CompanyInfo struct {
	Name          string  `json:"name"`
	Domain        string  `json:"domain"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	TrustpilotURL string  `json:"trustpilot_url"`
}
