package circulation

const dateLayout = "2006-01-02"

// IssueRequest is posted by staff from the issue form.
type IssueRequest struct {
	BookID     int64  `form:"book_id" json:"book_id"`
	MemberID   int64  `form:"member_id" json:"member_id"`
	IssueDate  string `form:"issue_date" json:"issue_date"`
	ReturnDate string `form:"return_date" json:"return_date"`
}

type ReserveRequest struct {
	BookID int64 `form:"book_id" json:"book_id"`
}

type IssuedRecordResponse struct {
	ID             int64   `json:"id"`
	BookID         int64   `json:"book_id"`
	BookTitle      *string `json:"book_title,omitempty"`
	MemberID       int64   `json:"member_id"`
	MemberUsername *string `json:"member_username,omitempty"`
	IssueDate      string  `json:"issue_date"`
	ReturnDate     string  `json:"return_date"`
	Returned       bool    `json:"returned"`
	Overdue        bool    `json:"overdue"`
}

type ReservationResponse struct {
	ID              int64   `json:"id"`
	BookID          int64   `json:"book_id"`
	BookTitle       *string `json:"book_title,omitempty"`
	MemberID        int64   `json:"member_id"`
	MemberUsername  *string `json:"member_username,omitempty"`
	ReservationDate string  `json:"reservation_date"`
	Status          string  `json:"status"`
}

type BookOptionResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type MemberOptionResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// IssueFormResponse feeds the issue-book form.
type IssueFormResponse struct {
	Books   []BookOptionResponse   `json:"books"`
	Members []MemberOptionResponse `json:"members"`
}

// ReserveFormResponse feeds the member reserve form.
type ReserveFormResponse struct {
	Books []BookOptionResponse `json:"books"`
}
