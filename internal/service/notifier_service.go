package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"content-control/internal/apperr"
	"content-control/internal/model"
	"content-control/internal/repository"
)

// MailSender is the outbound mail-relay boundary.
type MailSender interface {
	Send(to []string, subject, htmlBody string) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (s *SMTPSender) Send(to []string, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("Sistema de Controle de Conteúdo <%s>", s.from))
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// DigestSummary reports the outcome of a multi-project send. Projects are
// independent: one failure never aborts the others.
type DigestSummary struct {
	Sent     int      `json:"sent"`
	Failed   int      `json:"failed"`
	Warnings []string `json:"warnings,omitempty"`
}

// NotifierService mails per-project digests of pending occurrences.
type NotifierService struct {
	occs     *repository.OccurrenceRepository
	catalogs *repository.CatalogRepository
	sender   MailSender
	log      *zap.Logger
}

func NewNotifierService(occs *repository.OccurrenceRepository, catalogs *repository.CatalogRepository, sender MailSender, log *zap.Logger) *NotifierService {
	return &NotifierService{occs: occs, catalogs: catalogs, sender: sender, log: log}
}

// SendProjectDigests groups the given pending occurrences (all of them when
// ids is empty) by project and sends one digest per project to that
// project's recipients.
func (s *NotifierService) SendProjectDigests(ctx context.Context, ids []uint) (DigestSummary, error) {
	var summary DigestSummary

	occs, err := s.occs.ListPendingByIDs(ctx, ids)
	if err != nil {
		return summary, apperr.External("load occurrences", err)
	}
	if len(occs) == 0 {
		summary.Warnings = append(summary.Warnings, "nenhuma pendência para notificar")
		return summary, nil
	}

	byProject := make(map[uint][]model.ScheduleOccurrence)
	for _, occ := range occs {
		byProject[occ.ProjectID] = append(byProject[occ.ProjectID], occ)
	}

	for projectID, group := range byProject {
		project, err := s.catalogs.GetProject(ctx, projectID)
		projectName := fmt.Sprintf("projeto %d", projectID)
		if err == nil {
			projectName = project.Name
		}

		recipients, err := s.catalogs.ProjectRecipients(ctx, projectID)
		if err != nil {
			summary.Failed++
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: falha ao carregar destinatários: %v", projectName, err))
			continue
		}
		if len(recipients) == 0 {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: nenhum destinatário cadastrado", projectName))
			continue
		}

		addrs := make([]string, 0, len(recipients))
		for _, u := range recipients {
			if u.Email != "" {
				addrs = append(addrs, u.Email)
			}
		}
		if len(addrs) == 0 {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: destinatários sem e-mail", projectName))
			continue
		}

		subject := fmt.Sprintf("Pendências de controle de conteúdo — %s", projectName)
		body := buildDigestBody(projectName, group)
		if err := s.sender.Send(addrs, subject, body); err != nil {
			summary.Failed++
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("%s: falha no envio: %v", projectName, err))
			s.log.Warn("digest send failed", zap.String("project", projectName), zap.Error(err))
			continue
		}
		summary.Sent++
	}

	s.log.Info("digests sent",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("warnings", len(summary.Warnings)))
	return summary, nil
}

func buildDigestBody(projectName string, occs []model.ScheduleOccurrence) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>Pendências — %s</h2>", html.EscapeString(projectName)))
	sb.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	sb.WriteString("<tr><th>Descrição</th><th>Prazo</th><th>Obrigatório</th></tr>")
	now := time.Now()
	for _, occ := range occs {
		due := occ.Due.Format("02/01/2006")
		if occ.Due.Before(now) {
			due = "<b>" + due + " (atrasado)</b>"
		}
		obligatory := "NÃO"
		if occ.Obligatory {
			obligatory = "SIM"
		}
		sb.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(occ.Description), due, obligatory))
	}
	sb.WriteString("</table>")
	return sb.String()
}
