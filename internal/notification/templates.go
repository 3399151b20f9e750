package notification

import (
	"fmt"
	"html"
	"strings"

	"aprobaciones/internal/model"
)

func typeLabel(req *model.Request) string {
	if req.RequestType != nil {
		return fmt.Sprintf("%s (%s)", req.RequestType.Name, req.RequestType.Code)
	}
	return fmt.Sprintf("Tipo ID %d", req.RequestTypeID)
}

func userLabel(u *model.User, id uint) string {
	if u != nil {
		return fmt.Sprintf("%s (%s)", u.DisplayName, u.Username)
	}
	return fmt.Sprintf("usuario %d", id)
}

func renderLayout(content string) string {
	return fmt.Sprintf(`<html>
  <body style="margin:0;padding:0;font-family:system-ui,sans-serif;background-color:#f4f4f5;">
    <div style="max-width:600px;margin:0 auto;padding:24px 16px;">
      <div style="background-color:#ffffff;border-radius:12px;padding:24px 20px;">
        %s
      </div>
      <p style="font-size:12px;color:#9ca3af;margin-top:20px;text-align:center;">
        Este es un mensaje automático del sistema de Flujo de Aprobaciones.<br/>
        Por favor, no respondas directamente a este correo.
      </p>
    </div>
  </body>
</html>`, content)
}

// buildNewRequestEmail renders the notification sent to the responsible
// party when a request is created.
func buildNewRequestEmail(req *model.Request) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("[%s] Nueva solicitud de aprobación", req.PublicID)

	applicant := userLabel(req.Applicant, req.ApplicantID)
	responsible := userLabel(req.Responsible, req.ResponsibleID)

	text = strings.Join([]string{
		"Se ha creado una nueva solicitud que requiere tu atención.",
		"",
		"ID público: " + req.PublicID,
		"Título: " + req.Title,
		"Tipo: " + typeLabel(req),
		"Estado actual: " + req.Status,
		"",
		"Solicitante: " + applicant,
		"Responsable: " + responsible,
		"",
		"Descripción:",
		req.Description,
		"",
		"Por favor, ingresa a la aplicación de Flujo de Aprobaciones para revisarla.",
	}, "\n")

	htmlBody = renderLayout(fmt.Sprintf(`
        <h1 style="font-size:20px;font-weight:600;margin:0 0 8px 0;">Nueva solicitud de aprobación</h1>
        <span style="display:inline-block;padding:4px 10px;border-radius:999px;font-size:11px;background-color:#eef2ff;color:#4f46e5;">%s</span>
        <p style="font-size:14px;line-height:1.6;margin:10px 0;">La solicitud <strong>%s</strong> (%s) fue creada por %s y requiere tu decisión.</p>
        <p style="font-size:14px;line-height:1.6;margin:10px 0;">%s</p>`,
		req.Status,
		html.EscapeString(req.Title),
		req.PublicID,
		html.EscapeString(applicant),
		html.EscapeString(req.Description),
	))

	return subject, text, htmlBody
}

// buildStatusChangeEmail renders the notification sent to the applicant
// when their request is decided.
func buildStatusChangeEmail(req *model.Request, comment *string) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("[%s] Tu solicitud fue %s", req.PublicID, strings.ToLower(req.Status))

	responsible := userLabel(req.Responsible, req.ResponsibleID)

	lines := []string{
		fmt.Sprintf("Tu solicitud %s cambió de estado.", req.PublicID),
		"",
		"Título: " + req.Title,
		"Tipo: " + typeLabel(req),
		"Nuevo estado: " + req.Status,
		"Decidida por: " + responsible,
	}
	if comment != nil {
		lines = append(lines, "", "Comentario:", *comment)
	}
	text = strings.Join(lines, "\n")

	commentHTML := ""
	if comment != nil {
		commentHTML = fmt.Sprintf(`<p style="font-size:14px;line-height:1.6;margin:10px 0;"><em>%s</em></p>`, html.EscapeString(*comment))
	}

	htmlBody = renderLayout(fmt.Sprintf(`
        <h1 style="font-size:20px;font-weight:600;margin:0 0 8px 0;">Solicitud %s</h1>
        <span style="display:inline-block;padding:4px 10px;border-radius:999px;font-size:11px;background-color:#eef2ff;color:#4f46e5;">%s</span>
        <p style="font-size:14px;line-height:1.6;margin:10px 0;">La solicitud <strong>%s</strong> fue decidida por %s.</p>
        %s`,
		req.PublicID,
		req.Status,
		html.EscapeString(req.Title),
		html.EscapeString(responsible),
		commentHTML,
	))

	return subject, text, htmlBody
}
