// Package assistant answers storefront chat messages with canned guidance
// and product suggestions drawn from the live catalog.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/solar-storefront/internal/domain/cart"
	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/domain/product"
)

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrRateLimited  = errors.New("too many messages, please slow down")
)

// MaxSuggestions caps the products attached to a reply
const MaxSuggestions = 3

const maxMessageLength = 1000

// Intent is what the assistant thinks the customer asked about
type Intent string

const (
	IntentGreeting      Intent = "greeting"
	IntentCompatibility Intent = "compatibility"
	IntentBatteries     Intent = "batteries"
	IntentPanels        Intent = "panels"
	IntentInverters     Intent = "inverters"
	IntentControllers   Intent = "controllers"
	IntentPayment       Intent = "payment"
	IntentShipping      Intent = "shipping"
	IntentPrice         Intent = "price"
	IntentUnknown       Intent = "unknown"
)

// Catalog lists the visible products
type Catalog interface {
	List(ctx context.Context, req *product.ProductListRequest) []product.Product
}

// ChatRequest is one customer message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the assistant reply
type ChatResponse struct {
	Intent      Intent            `json:"intent"`
	Reply       string            `json:"reply"`
	Suggestions []product.Product `json:"suggestions"`
}

type rule struct {
	intent   Intent
	keywords []string
}

// rules are matched in order; the first rule with a keyword hit wins
var rules = []rule{
	{IntentCompatibility, []string{"compatible", "compatibility", "voltage", "12v", "24v", "48v", "mix", "match"}},
	{IntentPayment, []string{"pay", "payment", "bank", "transfer", "crypto", "usdt", "bitcoin", "whatsapp"}},
	{IntentShipping, []string{"ship", "shipping", "delivery", "deliver", "courier", "track"}},
	{IntentBatteries, []string{"battery", "batteries", "lifepo4", "lithium", "storage", "ah"}},
	{IntentPanels, []string{"panel", "panels", "module", "pv", "mono", "poly"}},
	{IntentInverters, []string{"inverter", "inverters", "hybrid", "off-grid", "offgrid"}},
	{IntentControllers, []string{"controller", "mppt", "pwm", "charge"}},
	{IntentPrice, []string{"price", "cost", "cheap", "cheapest", "budget", "discount", "offer", "how much"}},
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good evening", "salam"}},
}

var categoryByIntent = map[Intent]string{
	IntentBatteries:   "batteries",
	IntentPanels:      "panels",
	IntentInverters:   "inverters",
	IntentControllers: "controllers",
}

var (
	wordPattern    = regexp.MustCompile(`[a-z0-9\-]+`)
	voltageMention = regexp.MustCompile(`\b(12|24|48)\s*[vV]\b`)
)

// Service answers chat messages
type Service struct {
	catalog  Catalog
	limiter  *Limiter
	currency string
	log      *logrus.Logger
}

// NewService creates a new assistant service
func NewService(catalog Catalog, limiter *Limiter, currency string, log *logrus.Logger) *Service {
	return &Service{
		catalog:  catalog,
		limiter:  limiter,
		currency: currency,
		log:      log,
	}
}

// Limiter exposes the per-IP limiter so callers can prune it
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// Reply classifies msg and builds an answer with up to MaxSuggestions products
func (s *Service) Reply(ctx context.Context, ip string, req *ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.limiter != nil && !s.limiter.Allow(ip) {
		return nil, ErrRateLimited
	}
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength]
	}

	intent := Classify(message)
	products := s.catalog.List(ctx, &product.ProductListRequest{})

	resp := &ChatResponse{Intent: intent}
	switch intent {
	case IntentGreeting:
		resp.Reply = "Hello! I can help you size a solar system, compare panels, batteries and inverters, or explain payment and delivery."
		resp.Suggestions = featured(products)
	case IntentCompatibility:
		resp.Reply, resp.Suggestions = compatibilityReply(message, products)
	case IntentBatteries, IntentPanels, IntentInverters, IntentControllers:
		category := categoryByIntent[intent]
		resp.Suggestions = inCategory(products, category)
		if len(resp.Suggestions) == 0 {
			resp.Reply = fmt.Sprintf("We have no %s in stock right now. Check back soon or ask us on WhatsApp.", category)
		} else {
			resp.Reply = fmt.Sprintf("Here are some of our %s. Tap one to see the full specifications.", category)
		}
	case IntentPayment:
		resp.Reply = "You can pay by bank transfer or crypto and upload a screenshot of the payment at checkout, or place the order over WhatsApp."
	case IntentShipping:
		resp.Reply = "We deliver nationwide. Once your payment is confirmed the order moves to processing and we contact you with delivery details."
	case IntentPrice:
		resp.Suggestions = cheapest(products)
		resp.Reply = "Here are our most affordable items right now."
		if len(resp.Suggestions) > 0 {
			p := resp.Suggestions[0]
			resp.Reply = fmt.Sprintf("Prices start at %s for the %s. Here are our most affordable items.",
				order.FormatAmount(p.Price, s.currency), p.Name)
		}
	default:
		resp.Reply = "I'm not sure I understood. Ask me about panels, batteries, inverters, system voltage, payment or delivery."
	}

	if len(resp.Suggestions) > MaxSuggestions {
		resp.Suggestions = resp.Suggestions[:MaxSuggestions]
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []product.Product{}
	}

	s.log.WithFields(logrus.Fields{
		"intent":      intent,
		"suggestions": len(resp.Suggestions),
	}).Debug("Assistant reply")

	return resp, nil
}

// Classify returns the first intent whose keywords appear in message
func Classify(message string) Intent {
	lower := strings.ToLower(message)
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = true
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(lower, kw) {
					return r.intent
				}
				continue
			}
			if words[kw] {
				return r.intent
			}
		}
	}
	return IntentUnknown
}

func compatibilityReply(message string, products []product.Product) (string, []product.Product) {
	m := voltageMention.FindStringSubmatch(message)
	if m == nil {
		return "Every component of a system must share one battery bank voltage (12V, 24V or 48V). Tell me which voltage you use and I'll suggest matching equipment.", nil
	}

	voltage, _ := strconv.Atoi(m[1])
	var matching []product.Product
	for _, p := range products {
		if !p.IsInStock() {
			continue
		}
		for _, v := range cart.Voltages([]cart.Line{{Product: p}}) {
			if v == voltage {
				matching = append(matching, p)
				break
			}
		}
	}

	if len(matching) == 0 {
		return fmt.Sprintf("I couldn't find equipment labelled for %dV. Contact us and we'll help you choose.", voltage), nil
	}
	return fmt.Sprintf("These items are suited to a %dV system. Avoid mixing them with equipment for other voltages.", voltage), matching
}

func inCategory(products []product.Product, category string) []product.Product {
	var result []product.Product
	for _, p := range products {
		if strings.EqualFold(p.Category, category) && p.IsInStock() {
			result = append(result, p)
		}
	}
	return result
}

func cheapest(products []product.Product) []product.Product {
	var result []product.Product
	for _, p := range products {
		if p.IsInStock() {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	return result
}

// featured prefers discounted products, then keeps catalog order
func featured(products []product.Product) []product.Product {
	var offers, rest []product.Product
	for _, p := range products {
		if !p.IsInStock() {
			continue
		}
		if p.GetDiscountPercentage() > 0 {
			offers = append(offers, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(offers, rest...)
}
