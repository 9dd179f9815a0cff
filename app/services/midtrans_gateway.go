package services

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransGateway creates Snap transactions. The Snap token is handed to the
// client as the payment secret and the generated order id identifies the intent.
type MidtransGateway struct {
	client *snap.Client
	cfg    configs.MidtransConfig
}

func NewMidtransGateway(cfg configs.MidtransConfig) *MidtransGateway {
	return &MidtransGateway{client: configs.NewSnapClient(cfg), cfg: cfg}
}

func (g *MidtransGateway) Configured() bool {
	return g.cfg.Configured()
}

func (g *MidtransGateway) CreateIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	// snap.Client calls are not context-aware, so only a request that is
	// already cancelled is stopped before reaching Midtrans.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orderID := "PI-" + uuid.NewString()

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: req.AmountMinor,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.FirstName,
			LName: req.LastName,
			Email: req.Email,
		},
		CustomField1: strconv.FormatUint(req.UserID, 10),
		CustomField2: req.Email,
	}

	resp, errMidtrans := g.client.CreateTransaction(snapReq)
	if errMidtrans != nil {
		kind := PaymentErrProcessor
		if errMidtrans.StatusCode == http.StatusUnauthorized || errMidtrans.StatusCode == http.StatusForbidden {
			kind = PaymentErrAuth
		}
		return nil, &PaymentError{Kind: kind, Message: errMidtrans.Message, Err: errMidtrans}
	}
	if resp == nil || resp.Token == "" {
		return nil, &PaymentError{Kind: PaymentErrProcessor, Message: "processor returned an empty token"}
	}

	return &PaymentIntent{
		ClientSecret:    resp.Token,
		PaymentIntentID: orderID,
		RedirectURL:     resp.RedirectURL,
	}, nil
}
