package eclair

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/lnsettle/eclair-adapter/internal/config"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

type service struct {
	client *Client
	cfg    *config.Config

	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewService(client *Client, cfg *config.Config) ports.LightningService {
	return &service{
		client:       client,
		cfg:          cfg,
		pollInterval: time.Duration(cfg.PollIntervalSecs) * time.Second,
		pollTimeout:  time.Duration(cfg.PollTimeoutSecs) * time.Second,
	}
}

func (s *service) Request(
	ctx context.Context,
	amountMsat uint64, description, preimage string, expirySeconds int64,
) (*domain.Invoice, error) {
	if !s.CanRequest(amountMsat) {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("cannot request amount of %d msat", amountMsat),
		}
	}

	minExpiry, maxExpiry := s.cfg.ExpiryBounds()
	if expirySeconds < minExpiry || expirySeconds > maxExpiry {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("invoice expiry %ds out of bounds [%d, %d]", expirySeconds, minExpiry, maxExpiry),
		}
	}

	params := url.Values{}
	params.Set("description", description)
	params.Set("amountMsat", strconv.FormatUint(amountMsat, 10))
	params.Set("expireIn", strconv.FormatInt(expirySeconds, 10))
	if preimage != "" {
		params.Set("paymentPreimage", preimage)
	}

	raw, err := s.client.Call(ctx, createInvoiceCmd, params)
	if err != nil {
		return nil, err
	}

	var created paymentRequest
	decodeLenient(raw, &created)

	info, err := s.GetInfo(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Invoice{
		PreimageHash:  created.PaymentHash,
		Preimage:      preimage,
		Request:       created.Serialized,
		AmountMsat:    amountMsat,
		Description:   description,
		ExpirySeconds: created.Expiry,
		BlockHeight:   info.BlockHeight,
		State:         domain.InvoicePending,
		CreatedAt:     time.Now(),
	}, nil
}

func (s *service) Send(ctx context.Context, payment domain.Payment) (*domain.Payment, error) {
	if !s.CanSend(payment.AmountMsat) {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("cannot send amount of %d msat", payment.AmountMsat),
		}
	}

	params := url.Values{}
	params.Set("invoice", payment.Request)
	params.Set("amountMsat", strconv.FormatUint(payment.AmountMsat, 10))
	params.Set("maxAttempts", strconv.FormatUint(uint64(s.cfg.SendMaxAttempts), 10))
	params.Set("maxFeePct", strconv.FormatFloat(payment.FeeLimitPct, 'f', 6, 64))
	params.Set("feeThresholdSat", strconv.FormatUint(s.cfg.SendFeeThresholdSat, 10))

	raw, err := s.client.Call(ctx, payInvoiceCmd, params)
	if err != nil {
		return nil, err
	}

	ids := partIDs(raw)
	if len(ids) == 0 {
		return nil, &domain.ServiceUnavailableError{
			Endpoint: payInvoiceCmd, Message: "node returned no part ids",
		}
	}

	parts, err := s.waitForSettlement(ctx, ids[0])
	if err != nil {
		return nil, err
	}

	rep := representativePart(parts)
	if rep.Status.Type == domain.PaymentStatusFailed {
		return nil, &domain.PaymentFailedError{Message: firstFailureMessage(rep)}
	}

	settled := payment
	settled.Preimage = rep.Status.PaymentPreimage
	settled.PreimageHash = rep.PaymentHash
	settled.AmountPaidMsat = settledAmountMsat(parts)
	settled.FeeSettledMsat = settledFeesMsat(parts)
	settled.Label = rep.ID
	settled.State = domain.PaymentCompleted
	return &settled, nil
}

// waitForSettlement polls getsentinfo until no part is pending. The
// node keeps retrying routes internally, so the poll is bounded by a
// deadline rather than an attempt count.
func (s *service) waitForSettlement(ctx context.Context, id string) ([]sentPart, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(s.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		parts, err := s.sentParts(ctx, url.Values{"id": []string{id}})
		if err != nil {
			return nil, err
		}
		if len(parts) > 0 && !anyPending(parts) {
			return parts, nil
		}

		if time.Now().After(deadline) {
			log.WithField("id", id).Warn("payment still pending at poll deadline")
			return nil, &domain.PollTimeoutError{PaymentID: id, Timeout: s.pollTimeout}
		}
	}
}

func (s *service) Decode(ctx context.Context, request string) (*domain.Invoice, error) {
	params := url.Values{}
	params.Set("invoice", request)

	raw, err := s.client.Call(ctx, parseInvoiceCmd, params)
	if err != nil {
		return nil, err
	}

	var parsed paymentRequest
	decodeLenient(raw, &parsed)

	expiry := parsed.Expiry
	if expiry == 0 {
		// bolt11 default when the invoice carries no expiry field
		expiry = 3600
	}

	return &domain.Invoice{
		PreimageHash:  parsed.PaymentHash,
		Request:       parsed.Serialized,
		Destination:   parsed.NodeID,
		AmountMsat:    parsed.Amount,
		Description:   parsed.Description,
		ExpirySeconds: expiry,
		CltvExpiry:    parsed.MinFinalCltvExpiry,
		CreatedAt:     time.Unix(parsed.Timestamp, 0),
	}, nil
}

func (s *service) EstimateFee(ctx context.Context, payment domain.Payment) (uint64, error) {
	params := url.Values{}
	params.Set("invoice", payment.Request)
	params.Set("amountMsat", strconv.FormatUint(payment.AmountMsat, 10))

	raw, err := s.client.Call(ctx, findRouteCmd, params)
	if err != nil {
		return 0, err
	}

	var route []json.RawMessage
	decodeLenient(raw, &route)

	if len(route) < 2 {
		return 0, &domain.RouteNotFoundError{Hops: len(route)}
	}
	if len(route) == 2 {
		// direct peer, no routing fee
		return 0, nil
	}
	return uint64(math.Ceil(float64(payment.AmountMsat) * payment.FeeLimitPct / 100)), nil
}

func (s *service) GetInvoice(ctx context.Context, preimageHash string) (*domain.Invoice, error) {
	params := url.Values{}
	params.Set("paymentHash", preimageHash)

	raw, err := s.client.Call(ctx, getReceivedInfoCmd, params)
	if err != nil {
		return nil, err
	}

	var received receivedInfo
	decodeLenient(raw, &received)
	if received.PaymentRequest.PaymentHash == "" {
		return nil, nil
	}

	state, err := domain.ParseInvoiceState(received.Status.Type)
	if err != nil {
		return nil, err
	}

	return &domain.Invoice{
		PreimageHash:   received.PaymentRequest.PaymentHash,
		Preimage:       received.PaymentPreimage,
		Request:        received.PaymentRequest.Serialized,
		AmountMsat:     received.PaymentRequest.Amount,
		AmountPaidMsat: received.Status.Amount,
		Description:    received.PaymentRequest.Description,
		State:          state,
		CreatedAt:      time.Unix(received.PaymentRequest.Timestamp, 0),
	}, nil
}

func (s *service) GetPayment(ctx context.Context, preimageHash string) (*domain.Payment, error) {
	parts, err := s.sentParts(ctx, url.Values{"paymentHash": []string{preimageHash}})
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}

	rep := representativePart(parts)
	state, err := domain.ParsePaymentState(rep.Status.Type)
	if err != nil {
		return nil, err
	}

	return &domain.Payment{
		PreimageHash:   rep.PaymentHash,
		Preimage:       rep.Status.PaymentPreimage,
		Request:        rep.PaymentRequest.Serialized,
		Destination:    rep.PaymentRequest.NodeID,
		AmountMsat:     rep.RecipientAmount,
		AmountPaidMsat: settledAmountMsat(parts),
		FeeSettledMsat: settledFeesMsat(parts),
		Label:          rep.ID,
		State:          state,
		CreatedAt:      time.Unix(rep.CreatedAt, 0),
	}, nil
}

func (s *service) GetInfo(ctx context.Context) (*domain.NodeInfo, error) {
	raw, err := s.client.Call(ctx, getInfoCmd, nil)
	if err != nil {
		return nil, err
	}

	var info nodeInfo
	decodeLenient(raw, &info)

	return &domain.NodeInfo{
		NodeID:      info.NodeID,
		Alias:       info.Alias,
		BlockHeight: info.BlockHeight,
		Version:     info.Version,
	}, nil
}

func (s *service) CanRequest(amountMsat uint64) bool {
	return s.cfg.RequestEnabled &&
		amountMsat >= s.cfg.RequestMinMsat &&
		amountMsat <= s.cfg.RequestMaxMsat
}

func (s *service) CanSend(amountMsat uint64) bool {
	return s.cfg.SendEnabled &&
		amountMsat >= s.cfg.SendMinMsat &&
		amountMsat <= s.cfg.SendMaxMsat
}

func (s *service) sentParts(ctx context.Context, params url.Values) ([]sentPart, error) {
	raw, err := s.client.Call(ctx, getSentInfoCmd, params)
	if err != nil {
		return nil, err
	}

	var parts []sentPart
	decodeLenient(raw, &parts)
	return parts, nil
}

// partIDs reads a payinvoice result, which is a list of part ids or a
// single scalar id depending on how the node split the payment.
func partIDs(raw json.RawMessage) []string {
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil && id != "" {
		return []string{id}
	}
	return nil
}

// representativePart is the placeholder aggregation policy: state and
// identity of a multi-part payment come from the first part alone.
func representativePart(parts []sentPart) sentPart {
	return parts[0]
}

func anyPending(parts []sentPart) bool {
	for _, part := range parts {
		if part.Status.Type == domain.PaymentStatusPending {
			return true
		}
	}
	return false
}

// settledFeesMsat sums fees over successfully sent parts; failed or
// pending parts contribute nothing.
func settledFeesMsat(parts []sentPart) uint64 {
	var total uint64
	for _, part := range parts {
		if part.Status.Type == domain.PaymentStatusSent {
			total += part.Status.FeesPaid
		}
	}
	return total
}

func settledAmountMsat(parts []sentPart) uint64 {
	var total uint64
	for _, part := range parts {
		if part.Status.Type == domain.PaymentStatusSent {
			total += part.Amount
		}
	}
	return total
}

func firstFailureMessage(part sentPart) string {
	if len(part.Status.Failures) > 0 {
		return part.Status.Failures[0].FailureMessage
	}
	return "unspecified node failure"
}

// decodeLenient mirrors the gateway's tolerant read: a response that
// does not match the expected shape leaves the target at its zero
// value instead of failing the call.
func decodeLenient(raw json.RawMessage, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		log.WithError(err).Debug("discarding undecodable eclair response")
	}
}
