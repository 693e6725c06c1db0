package notification

import (
	"bytes"
	"html/template"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
)

var customerTmpl = template.Must(template.New("customer").Parse(`<h2>¡Pago confirmado!</h2>
<p>Hola {{.Customer.Name}}, recibimos tu abono de ${{.Amount}} {{.Currency}} ({{.Customer.DepositLabel}}).</p>
<p>Orden: <strong>{{.OrderID}}</strong></p>
<p>Pronto me pondré en contacto contigo para coordinar tu cita.</p>`))

var operatorTmpl = template.Must(template.New("operator").Parse(`<h3>Pago confirmado - {{.OrderID}}</h3>
<p><strong>Cliente:</strong> {{.Customer.Name}}</p>
<p><strong>Email:</strong> {{.Customer.Email}}</p>
<p><strong>Teléfono:</strong> {{.Customer.Phone}}</p>
<p><strong>Género:</strong> {{.Customer.Gender}}</p>
<p><strong>Abono:</strong> {{.Customer.DepositLabel}} - ${{.Amount}} {{.Currency}}</p>
<p><strong>Pagador:</strong> {{.PayerEmail}}</p>
<p><strong>Comentarios:</strong> {{.Customer.Comments}}</p>`))

var newsletterTmpl = template.Must(template.New("newsletter").Parse(`<h2>Nuevo suscriptor newsletter</h2>
<p><strong>Fecha:</strong> {{.At}}</p>
<p><strong>Nombre:</strong> {{.S.FirstName}} {{.S.LastName}}</p>
<p><strong>Email:</strong> {{.S.Email}}</p>
<p><strong>Teléfono:</strong> {{.S.Phone}}</p>
<p><strong>Instagram:</strong> @{{.S.Instagram}}</p>`))

var appointmentTmpl = template.Must(template.New("appointment").Parse(`<h3>Nueva cita agendada</h3>
<p><strong>Cliente:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Teléfono:</strong> {{.Phone}}</p>
<p><strong>Fecha:</strong> {{.Date}} {{.TimeSlot.Display}}</p>
<p><strong>Abono:</strong> {{.Deposit}}</p>
<p><strong>Comentarios:</strong> {{.Comments}}</p>`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newsletterData(s domain.Subscriber, at time.Time) any {
	return struct {
		S  domain.Subscriber
		At string
	}{S: s, At: at.Format("02-01-2006 15:04")}
}
