package sdk

import "time"

// User is the backend's profile record for an address.
type User struct {
	ID          string    `json:"_id,omitempty"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Photo       string    `json:"photo,omitempty"`
	Role        Role      `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	LastLogAt   time.Time `json:"last_log_at,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	HomeAddress string    `json:"address,omitempty"`
}

// Policy is an insurance product.
type Policy struct {
	ID              string   `json:"_id,omitempty"`
	Title           string   `json:"title"`
	Category        string   `json:"category,omitempty"`
	Description     string   `json:"description,omitempty"`
	MinAge          int      `json:"minAge,omitempty"`
	MaxAge          int      `json:"maxAge,omitempty"`
	CoverageRange   string   `json:"coverageRange,omitempty"`
	DurationOptions string   `json:"durationOptions,omitempty"`
	BasePremiumRate float64  `json:"basePremiumRate,omitempty"`
	Image           string   `json:"image,omitempty"`
	PurchaseCount   int      `json:"purchaseCount,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// PolicyPage is one page of the public policy catalogue.
type PolicyPage struct {
	Policies []Policy `json:"policies"`
	Total    int      `json:"total"`
}

// Quote is a saved premium estimate.
type Quote struct {
	ID             string    `json:"_id,omitempty"`
	UserEmail      string    `json:"userEmail"`
	UserName       string    `json:"userName,omitempty"`
	PolicyID       string    `json:"policyId"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender,omitempty"`
	Coverage       int64     `json:"coverage"`
	Duration       int       `json:"duration"`
	Smoker         bool      `json:"smoker"`
	MonthlyPremium int64     `json:"monthlyPremium"`
	AnnualPremium  int64     `json:"annualPremium"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ApplicationStatus is the approval state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationApproved ApplicationStatus = "Approved"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// QuoteInfo is the quote snapshot embedded in an application.
type QuoteInfo struct {
	Monthly  int64  `json:"monthly"`
	Annual   int64  `json:"annual"`
	Duration int    `json:"duration"`
	Coverage int64  `json:"coverage"`
	Smoker   bool   `json:"smoker"`
	Age      int    `json:"age"`
	Gender   string `json:"gender,omitempty"`
}

// Application is a customer's request to purchase a policy.
type Application struct {
	ID                string            `json:"_id,omitempty"`
	UserEmail         string            `json:"userEmail"`
	UserName          string            `json:"userName,omitempty"`
	ApplicantName     string            `json:"ApplicantName,omitempty"`
	PolicyID          string            `json:"policyId"`
	PolicyTitle       string            `json:"policyTitle,omitempty"`
	QuoteID           string            `json:"quoteId,omitempty"`
	QuoteInfo         QuoteInfo         `json:"quoteInfo"`
	ApplicantInfo     map[string]string `json:"applicantInfo,omitempty"`
	Status            ApplicationStatus `json:"status"`
	PaymentStatus     string            `json:"paymentStatus,omitempty"`
	AssignedAgent     string            `json:"assignedAgent,omitempty"`
	RejectionFeedback string            `json:"rejectionFeedback,omitempty"`
	ReviewSubmitted   bool              `json:"reviewSubmitted,omitempty"`
	SubmittedAt       time.Time         `json:"submittedAt,omitempty"`
}

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "Pending"
	ClaimApproved ClaimStatus = "Approved"
	ClaimRejected ClaimStatus = "Rejected"
)

// Claim is a customer's claim against a purchased policy.
type Claim struct {
	ID          string      `json:"_id,omitempty"`
	PolicyID    string      `json:"policyId"`
	PolicyTitle string      `json:"policyTitle,omitempty"`
	UserEmail   string      `json:"userEmail"`
	Reason      string      `json:"reason"`
	DocumentURL string      `json:"documentUrl,omitempty"`
	Status      ClaimStatus `json:"status"`
	SubmittedAt time.Time   `json:"submittedAt,omitempty"`
}

// Payment is a recorded premium payment.
type Payment struct {
	ID             string    `json:"_id,omitempty"`
	AppID          string    `json:"appId"`
	PolicyID       string    `json:"policyId,omitempty"`
	PolicyTitle    string    `json:"policyTitle,omitempty"`
	Email          string    `json:"email"`
	TransactionID  string    `json:"transactionId"`
	Amount         float64   `json:"amount"`
	PaymentStatus  string    `json:"PaymentStatus,omitempty"`
	PaymentMethod  []string  `json:"paymentMethod,omitempty"`
	Date           time.Time `json:"date"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

// Blog is an article published by an agent or admin.
type Blog struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Image       string    `json:"image,omitempty"`
	Author      string    `json:"author,omitempty"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	PublishDate time.Time `json:"publishDate,omitempty"`
	TotalVisit  int       `json:"totalVisit,omitempty"`
}

// Review is customer feedback on a purchased policy.
type Review struct {
	ID          string    `json:"_id,omitempty"`
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName,omitempty"`
	Photo       string    `json:"photo,omitempty"`
	PolicyID    string    `json:"policyId"`
	PolicyTitle string    `json:"policyTitle,omitempty"`
	Rating      int       `json:"rating"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submittedAt,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// AgentApplication is a customer's request to become an agent.
type AgentApplication struct {
	ID         string    `json:"_id,omitempty"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Phone      string    `json:"phone,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Subscriber is a newsletter subscription.
type Subscriber struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
