package reviews

import (
	"strings"
	"time"
)

const (
	titleMaxLength = 60
	// a word boundary is used only when it keeps at least this share of the title
	titleBoundaryRatio = 0.8

	defaultPerPage = 20
	profileBaseURL = "https://www.trustpilot.com/review/"
)

// Normalize converts an upstream payload into the widget's shape. now fills
// missing publication dates.
func Normalize(resp *UpstreamResponse, now time.Time) *ReviewsData {
	data := &ReviewsData{
		Reviews: make([]Review, 0, len(resp.Reviews)),
	}

	for _, r := range resp.Reviews {
		data.Reviews = append(data.Reviews, normalizeReview(r, now))
	}

	data.Pagination = PageInfo{
		CurrentPage:  1,
		TotalPages:   1,
		TotalReviews: len(resp.Reviews),
		PerPage:      defaultPerPage,
	}
	if resp.Filters != nil && resp.Filters.Pagination != nil {
		pg := resp.Filters.Pagination
		data.Pagination = PageInfo{
			CurrentPage:  pg.CurrentPage,
			TotalPages:   pg.TotalPages,
			TotalReviews: pg.TotalCount,
			PerPage:      pg.PerPage,
		}
	}

	var bu BusinessUnit
	if resp.BusinessUnit != nil {
		bu = *resp.BusinessUnit
	}
	data.Company = normalizeCompany(bu)

	return data
}

func normalizeReview(r UpstreamReview, now time.Time) Review {
	review := Review{
		ID:      r.ID,
		Title:   r.Title,
		Content: r.Text,
		Rating:  r.Rating,
		Helpful: r.Likes,
		Author:  Author{Name: "Anonymous"},
	}

	if review.Title == "" {
		if r.Text != "" {
			review.Title = smartTruncate(r.Text, titleMaxLength)
		} else {
			review.Title = "No title"
		}
	}
	if review.Content == "" {
		review.Content = "No content"
	}

	if c := r.Consumer; c != nil {
		if c.DisplayName != "" {
			review.Author.Name = c.DisplayName
		}
		review.Author.Avatar = c.ImageURL
		review.Author.Location = c.CountryCode
		review.Verified = c.IsVerified
	}

	if r.Dates != nil && r.Dates.PublishedDate != "" {
		review.Date = r.Dates.PublishedDate
	} else {
		review.Date = now.UTC().Format(time.RFC3339)
	}

	return review
}

func normalizeCompany(bu BusinessUnit) CompanyInfo {
	name := bu.DisplayName
	if name == "" {
		name = bu.IdentifyingName
	}
	if name == "" {
		name = "Unknown Company"
	}

	return CompanyInfo{
		Name:          name,
		Domain:        bu.WebsiteURL,
		AverageRating: bu.TrustScore,
		TotalReviews:  bu.NumberOfReviews,
		TrustpilotURL: profileBaseURL + bu.IdentifyingName,
	}
}

// smartTruncate shortens text to maxLength characters, preferring to cut at
// the last space, and appends an ellipsis.
func smartTruncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace >= 0 && len([]rune(truncated[:lastSpace])) > int(float64(maxLength)*titleBoundaryRatio) {
		return truncated[:lastSpace] + "..."
	}
	return truncated + "..."
}
