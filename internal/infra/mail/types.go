package mail

type MailType string

const (
	CredentialsIssued MailType = "CredentialsIssued"
	PublishRequested  MailType = "PublishRequested"
	SitePublished     MailType = "SitePublished"
)

type MailData interface {
	GetMailType() MailType
	GetSubject() string
	GetTemplate() string
}

// CredentialsIssuedData goes to sales after a successful generation, with the
// preview link and the customer's one-time credentials.
type CredentialsIssuedData struct {
	BusinessName string
	PreviewURL   string
	Username     string
	Password     string
	LoginURL     string
	Year         string
}

func (d CredentialsIssuedData) GetMailType() MailType {
	return CredentialsIssued
}

func (d CredentialsIssuedData) GetSubject() string {
	return "A new website is staged for preview"
}

func (d CredentialsIssuedData) GetTemplate() string {
	return credentialsIssuedTemplate
}

type PublishRequestedData struct {
	BusinessName string
	WebsiteID    string
	PreviewURL   string
	RequestedAt  string
	Year         string
}

func (d PublishRequestedData) GetMailType() MailType {
	return PublishRequested
}

func (d PublishRequestedData) GetSubject() string {
	return "A website is awaiting publish approval"
}

func (d PublishRequestedData) GetTemplate() string {
	return publishRequestedTemplate
}

type SitePublishedData struct {
	BusinessName  string
	DeploymentURL string
	Year          string
}

func (d SitePublishedData) GetMailType() MailType {
	return SitePublished
}

func (d SitePublishedData) GetSubject() string {
	return "Your website is live!"
}

func (d SitePublishedData) GetTemplate() string {
	return sitePublishedTemplate
}

const credentialsIssuedTemplate = `<html><body>
<h2>New website staged: {{.BusinessName}}</h2>
<p>Preview: <a href="{{.PreviewURL}}">{{.PreviewURL}}</a></p>
<p>Customer credentials (sent once):</p>
<ul>
<li>Username: {{.Username}}</li>
<li>Password: {{.Password}}</li>
<li>Login: <a href="{{.LoginURL}}">{{.LoginURL}}</a></li>
</ul>
<p>&copy; {{.Year}} SiteHatch</p>
</body></html>`

const publishRequestedTemplate = `<html><body>
<h2>Publish approval requested</h2>
<p>{{.BusinessName}} (website {{.WebsiteID}}) requested publishing at {{.RequestedAt}}.</p>
<p>Preview: <a href="{{.PreviewURL}}">{{.PreviewURL}}</a></p>
<p>&copy; {{.Year}} SiteHatch</p>
</body></html>`

const sitePublishedTemplate = `<html><body>
<h2>Congratulations, {{.BusinessName}}!</h2>
<p>Your website is now live at <a href="{{.DeploymentURL}}">{{.DeploymentURL}}</a>.</p>
<p>&copy; {{.Year}} SiteHatch</p>
</body></html>`
