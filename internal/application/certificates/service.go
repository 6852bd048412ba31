// Package certificates renders retirement certificates as PDF documents.
package certificates

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"carbon-exchange/internal/application/retirements"
	"carbon-exchange/internal/domain"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
)

const (
	fontFamily = "Arial"
	dateFormat = "2 January 2006"
)

// accent is the brand green used for the header band.
var accent = struct{ R, G, B int }{R: 34, G: 120, B: 74}

type Service struct {
	DB *gorm.DB
}

// Certificate is a retirement together with the project it retired credits of.
type Certificate struct {
	Retirement  domain.Retirement
	ProjectName string
	Location    string
	ProjectType string
	IsVerified  bool
}

// Load finds a certificate by number (case-insensitive).
func (s *Service) Load(ctx context.Context, number string) (*Certificate, error) {
	r, err := (&retirements.Service{DB: s.DB}).GetCertificate(ctx, number)
	if err != nil {
		return nil, err
	}
	cert := &Certificate{Retirement: *r}
	var p domain.Project
	err = s.DB.WithContext(ctx).Where("project_id = ?", r.ProjectID).First(&p).Error
	switch {
	case err == nil:
		cert.ProjectName = p.Name
		cert.Location = p.Location
		cert.ProjectType = p.ProjectType
		cert.IsVerified = p.IsVerified
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return cert, nil
}

// PDF loads and renders a certificate.
func (s *Service) PDF(ctx context.Context, number string) (*Certificate, []byte, error) {
	cert, err := s.Load(ctx, number)
	if err != nil {
		return nil, nil, err
	}
	b, err := Render(cert)
	if err != nil {
		return nil, nil, err
	}
	return cert, b, nil
}

// Render lays out a one-page landscape A4 certificate.
func Render(cert *Certificate) ([]byte, error) {
	r := cert.Retirement
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Retirement Certificate "+r.CertificateNumber, true)
	pdf.SetAuthor("Carbon Exchange", true)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	pdf.SetFillColor(accent.R, accent.G, accent.B)
	pdf.Rect(0, 0, w, 28, "F")
	pdf.SetDrawColor(accent.R, accent.G, accent.B)
	pdf.SetLineWidth(1)
	pdf.Rect(10, 10, w-20, h-20, "D")

	pdf.SetY(36)
	pdf.SetFont(fontFamily, "B", 26)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 14, "Certificate of Carbon Credit Retirement", "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, r.CertificateNumber, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont(fontFamily, "", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 14)
	pdf.CellFormat(0, 10, r.Account, "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("permanently retired %d carbon credits", r.Amount), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Project", projectLabel(cert)},
		{"Location", orDash(cert.Location)},
		{"Type", orDash(cert.ProjectType)},
		{"Verified", yesNo(cert.IsVerified)},
		{"Reason", r.Reason},
		{"Retired on", r.RetiredAt.UTC().Format(dateFormat)},
	}
	labelW, valueW := 45.0, 140.0
	left := (w - labelW - valueW) / 2
	for _, row := range rows {
		pdf.SetX(left)
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(labelW, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.CellFormat(valueW, 8, row[1], "B", 1, "L", false, 0, "")
	}

	pdf.SetY(h - 24)
	pdf.SetFont(fontFamily, "I", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Retirement #%d recorded on the Carbon Exchange ledger. Retired credits cannot be transferred or sold.", r.RetirementID), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func projectLabel(cert *Certificate) string {
	if cert.ProjectName == "" {
		return fmt.Sprintf("#%d", cert.Retirement.ProjectID)
	}
	return fmt.Sprintf("%s (#%d)", cert.ProjectName, cert.Retirement.ProjectID)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
