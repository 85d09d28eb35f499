package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tirudev/bookstack/internal/audit"
	"github.com/tirudev/bookstack/internal/auth"
	"github.com/tirudev/bookstack/internal/database/pricingconfig"
	"github.com/tirudev/bookstack/internal/database/rentals"
	"github.com/tirudev/bookstack/internal/database/users"
	"github.com/tirudev/bookstack/internal/entities"
	"github.com/tirudev/bookstack/internal/pricing"
)

// amountTolerance is how far a client-echoed amount may drift from the
// server-computed one before the settlement is refused. Covers rounding
// differences only, not stale quotes.
var amountTolerance = decimal.NewFromFloat(0.01)

// RentalsController handles the rental lifecycle: checkout, quoting and
// settlement.
type RentalsController struct {
	rentals *rentals.Repository
	pricing *pricingconfig.Repository
	users   *users.Repository
	auditor *audit.Service
}

// NewRentalsController creates a new rentals controller.
func NewRentalsController(rentalsRepo *rentals.Repository, pricingRepo *pricingconfig.Repository, usersRepo *users.Repository, auditor *audit.Service) *RentalsController {
	return &RentalsController{
		rentals: rentalsRepo,
		pricing: pricingRepo,
		users:   usersRepo,
		auditor: auditor,
	}
}

// RentBook opens a rental of a book for the authenticated customer.
func (rc *RentalsController) RentBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	rental, err := rc.rentals.Create(bookID, userID)
	if err != nil {
		if errors.Is(err, rentals.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "rent book")
		return
	}

	if rc.auditor != nil {
		rc.auditor.LogRental(userID, rental.ID, bookID)
	}

	respondCreated(c, rental)
}

// ListRentals returns rentals scoped to the caller's role: customers see
// their own, librarians see their library's, admins see everything.
func (rc *RentalsController) ListRentals(c *gin.Context) {
	var (
		list []entities.RentedBook
		err  error
	)

	switch auth.GetUserRole(c) {
	case entities.UserRoleAdmin:
		list, err = rc.rentals.ListAll()
	case entities.UserRoleLibrarian:
		librarian, lerr := rc.users.GetByID(GetUserID(c))
		if lerr != nil || librarian.LibraryID == nil {
			respondForbidden(c, "librarian is not assigned to a library")
			return
		}
		list, err = rc.rentals.ListByLibrary(*librarian.LibraryID)
	default:
		list, err = rc.rentals.ListByUser(GetUserID(c))
	}

	if err != nil {
		respondInternalError(c, err, "list rentals")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rentals": list, "count": len(list)})
}

// GetRental returns a single rental. Customers can only see their own.
func (rc *RentalsController) GetRental(c *gin.Context) {
	rental, ok := rc.loadOwnedRental(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rental)
}

// QuoteResponse pairs a rental with its price breakdown.
type QuoteResponse struct {
	RentalID          uint              `json:"rental_id"`
	RentedAt          time.Time         `json:"rented_at"`
	AsOf              time.Time         `json:"as_of"`
	Settled           bool              `json:"settled"`
	LoyaltyDiscounted bool              `json:"loyalty_discounted"`
	Breakdown         pricing.Breakdown `json:"breakdown"`
}

// QuoteRental prices a rental as of now, or as of its return date if it has
// already been settled. The quote is informational; settlement recomputes
// the amount.
func (rc *RentalsController) QuoteRental(c *gin.Context) {
	rental, ok := rc.loadOwnedRental(c)
	if !ok {
		return
	}

	asOf := time.Now()
	if rental.ReturnDate != nil {
		asOf = *rental.ReturnDate
	}

	quote, discounted, err := rc.quote(rental, asOf)
	if err != nil {
		respondInternalError(c, err, "quote rental")
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		RentalID:          rental.ID,
		RentedAt:          rental.CreatedAt,
		AsOf:              asOf,
		Settled:           rental.IsReturned,
		LoyaltyDiscounted: discounted,
		Breakdown:         quote,
	})
}

type settleRequest struct {
	PaymentMethod entities.PaymentMethod `json:"payment_method" binding:"required"`

	// Amount is the client's echo of the quoted total. Optional; when
	// present it must match the server-computed amount within a cent.
	Amount *decimal.Decimal `json:"amount"`
}

// SettleRental closes a rental: it recomputes the amount due server-side,
// records the payment and stamps the return date, all in one transaction.
// A second settlement attempt gets 409.
func (rc *RentalsController) SettleRental(c *gin.Context) {
	rental, ok := rc.loadOwnedRental(c)
	if !ok {
		return
	}

	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "payment_method is required")
		return
	}
	if !req.PaymentMethod.Valid() {
		respondBadRequest(c, "payment_method must be credit_card or debit_card")
		return
	}

	quote, discounted, err := rc.quote(rental, time.Now())
	if err != nil {
		respondInternalError(c, err, "price settlement")
		return
	}

	if req.Amount != nil && req.Amount.Sub(quote.Total).Abs().GreaterThan(amountTolerance) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "amount does not match the current quote",
			Details: gin.H{"expected": quote.Total, "received": req.Amount},
		})
		return
	}

	settled, err := rc.rentals.Settle(rental.ID, quote.Total, req.PaymentMethod)
	if err != nil {
		if rc.auditor != nil {
			rc.auditor.LogSettlement(rental.UserID, rental.ID, quote.Total, discounted, err)
		}
		switch {
		case errors.Is(err, rentals.ErrAlreadySettled):
			respondConflict(c, "rental already settled")
		case errors.Is(err, rentals.ErrNotFound):
			respondNotFound(c, "rental")
		default:
			respondInternalError(c, err, "settle rental")
		}
		return
	}

	if rc.auditor != nil {
		rc.auditor.LogSettlement(rental.UserID, rental.ID, quote.Total, discounted, nil)
	}

	c.JSON(http.StatusOK, settled)
}

// quote computes the price breakdown for a rental as of the given time,
// applying the loyalty discount when the renter has settled rentals before.
func (rc *RentalsController) quote(rental *entities.RentedBook, asOf time.Time) (pricing.Breakdown, bool, error) {
	cfg, err := rc.pricing.Get()
	if err != nil {
		return pricing.Breakdown{}, false, err
	}

	settledBefore, err := rc.rentals.CountSettledByUser(rental.UserID)
	if err != nil {
		return pricing.Breakdown{}, false, err
	}
	discounted := settledBefore > 0

	rates := pricing.Rates{
		TierOnePerDay: cfg.TierOneRatePerDay,
		TierTwoPerDay: cfg.TierTwoRatePerDay,
	}
	return pricing.Quote(rental.CreatedAt, asOf, rates, rental.Book.PurchaseAmount, discounted), discounted, nil
}

// loadOwnedRental loads the rental from the path parameter and enforces
// that customers can only touch their own rentals. Staff roles pass.
func (rc *RentalsController) loadOwnedRental(c *gin.Context) (*entities.RentedBook, bool) {
	rentalID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	rental, err := rc.rentals.GetByID(rentalID)
	if err != nil {
		if errors.Is(err, rentals.ErrNotFound) {
			respondNotFound(c, "rental")
		} else {
			respondInternalError(c, err, "load rental")
		}
		return nil, false
	}

	role := auth.GetUserRole(c)
	if role == entities.UserRoleCustomer && rental.UserID != GetUserID(c) {
		respondNotFound(c, "rental")
		return nil, false
	}

	return rental, true
}
