package service

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"gcsepal-backend/internal/model"
)

// ErrCourseNotCompleted is returned when a certificate is requested for an
// enrollment that has not reached completed status.
var ErrCourseNotCompleted = errors.New("course has not been completed")

type CertificateService interface {
	// Generate renders a completion certificate PDF for a completed
	// enrollment.
	Generate(user *model.User, course *model.Course, enrollment *model.Enrollment) ([]byte, error)
}

type certificateService struct{}

func NewCertificateService() CertificateService {
	return &certificateService{}
}

func (s *certificateService) Generate(user *model.User, course *model.Course, enrollment *model.Enrollment) ([]byte, error) {
	if enrollment.Status != model.EnrollmentStatusCompleted {
		return nil, ErrCourseNotCompleted
	}

	completedAt := time.Now()
	if enrollment.CompletedAt != nil {
		completedAt = *enrollment.CompletedAt
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFillColor(245, 247, 250)
	pdf.Rect(0, 0, 297, 210, "F")
	pdf.SetDrawColor(34, 67, 120)
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetFont("Helvetica", "B", 34)
	pdf.SetTextColor(34, 67, 120)
	pdf.SetY(40)
	pdf.CellFormat(0, 16, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.Ln(10)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(20, 20, 20)
	pdf.Ln(4)
	pdf.CellFormat(0, 14, user.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(60, 60, 60)
	pdf.Ln(4)
	pdf.CellFormat(0, 8, "has successfully completed the course", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(34, 67, 120)
	pdf.Ln(4)
	pdf.CellFormat(0, 12, course.Title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(90, 90, 90)
	pdf.Ln(10)
	pdf.CellFormat(0, 8, fmt.Sprintf("Completed on %s", completedAt.Format("2 January 2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "GCSEPal", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
