package dto

import (
	"github.com/sitehatch/sitehatch-backend/internal/application/consts"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ContentFacts is the sanitized business input handed to the copy generator.
type ContentFacts struct {
	BusinessName   string
	Tagline        string
	About          string
	Industry       string
	Services       []string
	TargetAudience string
}

// SiteCopy is what the generator returns, one block per page section.
type SiteCopy struct {
	Headline      string   `json:"headline"`
	Subheadline   string   `json:"subheadline"`
	AboutSection  string   `json:"aboutSection"`
	ServiceBlurbs []string `json:"serviceBlurbs"`
	CallToAction  string   `json:"callToAction"`
}

type Palette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

type ContactInfo struct {
	Email       string
	Phone       string
	Address     string
	SocialLinks map[string]string
}

type CreateSubmissionRequest struct {
	BusinessName   string             `json:"businessName"`
	Tagline        string             `json:"tagline"`
	About          string             `json:"about"`
	Industry       string             `json:"industry"`
	Services       []string           `json:"services"`
	TargetAudience string             `json:"targetAudience"`
	Email          string             `json:"email"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	LogoURL        string             `json:"logoUrl"`
	HeroImageURL   string             `json:"heroImageUrl"`
	GalleryURLs    []string           `json:"galleryUrls"`
	SocialLinks    map[string]string  `json:"socialLinks"`
	BusinessHours  map[string]string  `json:"businessHours"`
	Testimonials   []TestimonialInput `json:"testimonials"`
	Template       string             `json:"template"`
}

type TestimonialInput struct {
	Author string `json:"author"`
	Quote  string `json:"quote"`
	Role   string `json:"role"`
}

type CreateSubmissionResponse struct {
	SubmissionID string `json:"submissionId"`
}

type GenerateRequest struct {
	SubmissionID string `json:"submissionId"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	LoginURL string `json:"loginUrl"`
}

type GenerateResponse struct {
	Success          bool         `json:"success"`
	AlreadyGenerated bool         `json:"alreadyGenerated,omitempty"`
	WebsiteID        string       `json:"websiteId"`
	PreviewURL       string       `json:"previewUrl"`
	Credentials      *Credentials `json:"credentials,omitempty"`
}

type StatusResponse struct {
	SubmissionID     string                  `json:"submissionId"`
	SubmissionStatus consts.SubmissionStatus `json:"submissionStatus"`
	WebsiteID        string                  `json:"websiteId,omitempty"`
	WebsiteStatus    consts.WebsiteStatus    `json:"websiteStatus,omitempty"`
	PaymentStatus    consts.PaymentStatus    `json:"paymentStatus,omitempty"`
	DeploymentURL    string                  `json:"deploymentUrl,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type PublishRequest struct {
	WebsiteID string `json:"websiteId"`
}

type PublishResponse struct {
	Status        consts.WebsiteStatus `json:"status"`
	AlreadyDone   bool                 `json:"alreadyDone,omitempty"`
	DeploymentURL string               `json:"deploymentUrl,omitempty"`
}

type CheckoutRequest struct {
	WebsiteID string `json:"websiteId"`
}

type CheckoutResponse struct {
	SessionID    string `json:"sessionId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	AlreadyPaid  bool   `json:"alreadyPaid,omitempty"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

type VerifyPaymentResponse struct {
	PaymentStatus consts.PaymentStatus `json:"paymentStatus"`
	WebsiteStatus consts.WebsiteStatus `json:"websiteStatus"`
	AlreadyDone   bool                 `json:"alreadyDone,omitempty"`
	DeploymentURL string               `json:"deploymentUrl,omitempty"`
}

type WebsiteSummary struct {
	WebsiteID       string               `json:"websiteId"`
	SubmissionID    string               `json:"submissionId"`
	BusinessName    string               `json:"businessName"`
	Status          consts.WebsiteStatus `json:"status"`
	PaymentStatus   consts.PaymentStatus `json:"paymentStatus"`
	PublishApproved bool                 `json:"publishApproved"`
	PreviewURL      string               `json:"previewUrl"`
	DeploymentURL   string               `json:"deploymentUrl,omitempty"`
}

type AdminStatsResponse struct {
	Submissions map[string]int `json:"submissions"`
	Websites    map[string]int `json:"websites"`
	Published   int            `json:"published"`
	Paid        int            `json:"paid"`
}

type DebugCredentialsResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	LoginURL string `json:"loginUrl"`
}

type DebugResetPasswordRequest struct {
	Email string `json:"email"`
}

type DebugResetPasswordResponse struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
