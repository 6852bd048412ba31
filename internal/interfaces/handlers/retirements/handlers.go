package retirements

import (
	"fmt"

	certsvc "carbon-exchange/internal/application/certificates"
	retsvc "carbon-exchange/internal/application/retirements"
	"carbon-exchange/internal/domain"
	"carbon-exchange/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service      *retsvc.Service
	Certificates *certsvc.Service
}

var errorCodes = map[error]int{
	domain.ErrMissingField:        fiber.StatusBadRequest,
	domain.ErrCertificateNotFound: fiber.StatusNotFound,
}

// ViewCertificate GET /api/v1/retirements/view-certificate/:certificate_number
// Lookup is case-insensitive.
func (h *Handlers) ViewCertificate(c *fiber.Ctx) error {
	r, err := h.Service.GetCertificate(c.UserContext(), c.Params("certificate_number"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	return response.Success(c, "Certificate fetched successfully", r, nil)
}

// DownloadCertificate GET /api/v1/retirements/certificate-pdf/:certificate_number
func (h *Handlers) DownloadCertificate(c *fiber.Ctx) error {
	cert, pdf, err := h.Certificates.PDF(c.UserContext(), c.Params("certificate_number"))
	if err != nil {
		return response.FromError(c, err, errorCodes)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, cert.Retirement.CertificateNumber))
	return c.Status(fiber.StatusOK).Send(pdf)
}
