package render

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/interfaces"
)

// Renderer turns copy, palette and contact details into the fixed artifact
// set: index.html, styles.css, script.js. Nothing else is ever produced.
type Renderer struct {
	page   *template.Template
	styles *texttemplate.Template
	script *texttemplate.Template
}

var _ interfaces.TemplateRenderer = (*Renderer)(nil)

func NewRenderer() *Renderer {
	return &Renderer{
		page:   template.Must(template.New("index.html").Parse(pageTemplate)),
		styles: texttemplate.Must(texttemplate.New("styles.css").Parse(stylesTemplate)),
		script: texttemplate.Must(texttemplate.New("script.js").Parse(scriptTemplate)),
	}
}

type pageData struct {
	Copy    dto.SiteCopy
	Palette dto.Palette
	Contact dto.ContactInfo
}

func (r *Renderer) Render(copy dto.SiteCopy, palette dto.Palette, contact dto.ContactInfo) (map[string][]byte, error) {
	data := pageData{Copy: copy, Palette: palette, Contact: contact}

	var index bytes.Buffer
	if err := r.page.Execute(&index, data); err != nil {
		return nil, fmt.Errorf("err rendering page, %v", err)
	}
	var styles bytes.Buffer
	if err := r.styles.Execute(&styles, data); err != nil {
		return nil, fmt.Errorf("err rendering styles, %v", err)
	}
	var script bytes.Buffer
	if err := r.script.Execute(&script, data); err != nil {
		return nil, fmt.Errorf("err rendering script, %v", err)
	}

	return map[string][]byte{
		"index.html": index.Bytes(),
		"styles.css": styles.Bytes(),
		"script.js":  script.Bytes(),
	}, nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Copy.Headline}}</title>
<link rel="stylesheet" href="styles.css">
</head>
<body>
<header class="hero">
<h1>{{.Copy.Headline}}</h1>
<p class="subheadline">{{.Copy.Subheadline}}</p>
<a class="cta" href="#contact">{{.Copy.CallToAction}}</a>
</header>
<section class="about">
<h2>About</h2>
<p>{{.Copy.AboutSection}}</p>
</section>
{{if .Copy.ServiceBlurbs}}<section class="services">
<h2>Services</h2>
<ul>
{{range .Copy.ServiceBlurbs}}<li>{{.}}</li>
{{end}}</ul>
</section>
{{end}}<section class="contact" id="contact">
<h2>Contact</h2>
{{if .Contact.Email}}<p>Email: <a href="mailto:{{.Contact.Email}}">{{.Contact.Email}}</a></p>{{end}}
{{if .Contact.Phone}}<p>Phone: {{.Contact.Phone}}</p>{{end}}
{{if .Contact.Address}}<p>{{.Contact.Address}}</p>{{end}}
{{range $platform, $link := .Contact.SocialLinks}}<p><a href="{{$link}}">{{$platform}}</a></p>
{{end}}</section>
<script src="script.js"></script>
</body>
</html>
`

const stylesTemplate = `:root {
  --primary: {{.Palette.Primary}};
  --secondary: {{.Palette.Secondary}};
  --accent: {{.Palette.Accent}};
}
body {
  margin: 0;
  font-family: system-ui, sans-serif;
  color: var(--primary);
}
.hero {
  background: var(--primary);
  color: #fff;
  padding: 4rem 2rem;
  text-align: center;
}
.cta {
  display: inline-block;
  background: var(--accent);
  color: #fff;
  padding: 0.75rem 2rem;
  border-radius: 4px;
  text-decoration: none;
}
section {
  max-width: 48rem;
  margin: 0 auto;
  padding: 2rem;
}
h2 {
  color: var(--secondary);
}
`

const scriptTemplate = `document.addEventListener('DOMContentLoaded', function () {
  var cta = document.querySelector('.cta');
  if (cta) {
    cta.addEventListener('click', function (e) {
      e.preventDefault();
      var target = document.querySelector(cta.getAttribute('href'));
      if (target) {
        target.scrollIntoView({ behavior: 'smooth' });
      }
    });
  }
});
`
