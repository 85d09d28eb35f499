package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database/payments"
	"github.com/tirudev/bookstack/internal/entities"
)

// InvoicesController exposes the payment history. Purchases show up
// immediately; rental payments only once the rental is settled.
type InvoicesController struct {
	payments *payments.Repository
}

// NewInvoicesController creates a new invoices controller.
func NewInvoicesController(paymentsRepo *payments.Repository) *InvoicesController {
	return &InvoicesController{payments: paymentsRepo}
}

// ListInvoices returns the caller's payments, or every payment for admins.
func (ic *InvoicesController) ListInvoices(c *gin.Context) {
	var (
		list []entities.Payment
		err  error
	)

	if auth.GetUserRole(c) == entities.UserRoleAdmin {
		list, err = ic.payments.ListAll()
	} else {
		list, err = ic.payments.ListByUser(GetUserID(c))
	}

	if err != nil {
		respondInternalError(c, err, "list invoices")
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": list, "count": len(list)})
}
