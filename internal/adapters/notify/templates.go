package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	domain "github.com/Miraines/MoonyAndStarry/community-service/internal/domain/account/notify"
	"github.com/jordan-wright/email"
)

var subjects = map[domain.Kind]string{
	domain.KindVerification:  "Código de Verificación para tu Cuenta",
	domain.KindPasswordReset: "Código de Restablecimiento de Contraseña",
}

var bodies = template.Must(template.New("verification").Parse(`<html>
<body>
<p>Hola,</p>
<p>Gracias por registrarte. Tu código de verificación es:</p>
<h3 style="color: #0056b3;">{{.Code}}</h3>
<p>Este código es válido por {{.Minutes}} minutos.</p>
<p>Si no solicitaste este código, por favor ignora este correo.</p>
</body>
</html>`))

func init() {
	template.Must(bodies.New("password_reset").Parse(`<html>
<body>
<p>Hola,</p>
<p>Recibimos una solicitud para restablecer tu contraseña. Tu código es:</p>
<h3 style="color: #0056b3;">{{.Code}}</h3>
<p>Este código es válido por {{.Minutes}} minutos.</p>
<p>Si no solicitaste el cambio, ignora este correo; tu contraseña no cambiará.</p>
</body>
</html>`))
}

// Render builds the message for msg. The body always carries the plain code.
func Render(from string, msg domain.CodeMessage) (*email.Email, error) {
	subject, ok := subjects[msg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}

	var html bytes.Buffer
	err := bodies.ExecuteTemplate(&html, string(msg.Kind), struct {
		Code    string
		Minutes int
	}{msg.Code, int(msg.ValidFor.Round(time.Minute) / time.Minute)})
	if err != nil {
		return nil, err
	}

	e := email.NewEmail()
	e.From = from
	e.To = []string{msg.To}
	e.Subject = subject
	e.HTML = html.Bytes()
	e.Text = []byte(fmt.Sprintf("%s: %s", subject, msg.Code))
	return e, nil
}
