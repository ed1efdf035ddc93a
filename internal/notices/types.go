package notices

// RawNotice is one procurement notice as returned by the provider API.
// Field availability varies by notice type; validation happens in the
// normalizer, not here.
type RawNotice struct {
	NoticeID        string     `json:"noticeId"`
	IssueDate       string     `json:"issueDate"`
	IssueTime       string     `json:"issueTime"`
	NoticeType      string     `json:"noticeType"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Buyer           *Buyer     `json:"buyer"`
	CPVCode         string     `json:"cpvCode"`
	ProcurementType string     `json:"procurementType"`
	TotalValue      *Valuation `json:"totalValue"`
}

// Buyer is the contracting party of a notice.
type Buyer struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// Valuation is a monetary amount with its currency.
type Valuation struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Pagination is the paging metadata attached to every page response.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Page is one page of the notices listing.
type Page struct {
	Notices    []RawNotice `json:"notices"`
	Pagination Pagination  `json:"pagination"`
}

// Cursor identifies a position in the notice listing. The provider uses
// plain offsets, so the cursor is just the offset of the next unfetched
// record.
type Cursor struct {
	Offset int
}
