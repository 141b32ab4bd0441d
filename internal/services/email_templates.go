package services

import (
	"bytes"
	"fmt"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; border: 1px solid #e5e7eb; border-radius: 10px; max-width: 600px; margin: auto;">
	<h2 style="color: #4f46e5; text-align: center;">Confirm your account</h2>
	<p>Hello {{.Name}},</p>
	<p>To finish registering at SAMURAI JAPANESE APP we have shown you 4 codes on the registration screen.</p>
	<p>Find the <strong>CORRECT VERIFICATION CODE</strong> below and pick it in the registration form.</p>
	<div style="background-color: #eff6ff; padding: 15px; border-radius: 8px; margin: 20px 0; border: 1px dashed #93c5fd;">
		<p style="font-weight: bold; color: #1e40af;">YOUR CORRECT CODE IS:</p>
		<h3 style="color: #10b981; font-size: 2.2em; text-align: center; letter-spacing: 3px;">{{.Correct}}</h3>
	</div>
	<p style="font-size: 0.9em; color: #6b7280;">
		This code expires in {{.Minutes}} minutes. The codes on your screen are:
		<span style="font-weight: bold;">{{range $i, $c := .Codes}}{{if $i}}, {{end}}{{$c}}{{end}}</span>.
	</p>
	<p>If you did not sign up, you can ignore this email.</p>
	<p>Best regards,<br>The SAMURAI JAPANESE APP team</p>
</div>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Welcome to SAMURAI JAPANESE APP, {{.Name}}!</h2>
<p>Your account has been created. You can now log in and start learning.</p>
<p>がんばってください！<br>The SAMURAI JAPANESE APP team</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<h3>Password reset requested</h3>
<p>We received a request to reset the password for your account.</p>
<p><a href="{{.Link}}">Click here to choose a new password</a>. The link is valid for {{.Minutes}} minutes.</p>
<p>If you did not request this change, you can ignore this email.</p>
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
