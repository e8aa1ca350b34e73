package members

const dateLayout = "2006-01-02"

// ===== Requests =====

type CreateMemberRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// UpdateMemberRequest changes username and email. A non-empty Password is
// re-hashed and replaces the stored one.
type UpdateMemberRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type CreateFineRequest struct {
	MemberID     int64  `form:"member_id" json:"member_id"`
	Amount       string `form:"amount" json:"amount"`
	Reason       string `form:"reason" json:"reason"`
	DateAssessed string `form:"date_assessed" json:"date_assessed"`
}

// ===== Responses =====

type MemberResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FineResponse struct {
	ID           int64  `json:"id"`
	MemberID     int64  `json:"member_id"`
	Username     string `json:"username"`
	Amount       string `json:"amount"`
	Reason       string `json:"reason"`
	DateAssessed string `json:"date_assessed"`
}

// FineFormResponse feeds the add-fine form.
type FineFormResponse struct {
	Members []MemberResponse `json:"members"`
}

type FineListResponse struct {
	Fines []FineResponse `json:"fines"`
	Total string         `json:"total"`
}
