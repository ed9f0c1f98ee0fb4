package usecases

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/minealert/minealert-backend/models"
)

const targetResolveTimeout = 5 * time.Second

// E.164: a plus sign, a country code not starting with 0, up to 15 digits in total.
var phoneNumberRegexp = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

// Special purpose ranges that a webhook must never point to, on top of what net.IP already
// classifies as private, loopback, link-local or multicast.
var reservedIPBlocks = mustParseCIDRs(
	"0.0.0.0/8",
	"100.64.0.0/10",
	"169.254.0.0/16",
	"192.0.0.0/24",
	"192.0.2.0/24",
	"192.88.99.0/24",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"240.0.0.0/4",
	"64:ff9b::/96",
	"100::/64",
	"2001::/32",
	"2001:db8::/32",
	"2002::/16",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// ParseCIDRList reads a comma separated list of CIDR ranges. Malformed entries are skipped.
func ParseCIDRList(cidrList string) []*net.IPNet {
	var blocks []*net.IPNet
	for _, cidr := range strings.Split(cidrList, ",") {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if _, block, err := net.ParseCIDR(cidr); err == nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func isReservedIP(ip net.IP, whitelist []*net.IPNet) bool {
	for _, block := range whitelist {
		if block.Contains(ip) {
			return false
		}
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, block := range reservedIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

type hostResolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// AlertTargetValidator checks the target of an alert recipient against its channel.
type AlertTargetValidator struct {
	allowInsecure bool
	ipWhitelist   []*net.IPNet
	resolver      hostResolver
}

func NewAlertTargetValidator(allowInsecure bool, ipWhitelist []*net.IPNet) *AlertTargetValidator {
	return &AlertTargetValidator{
		allowInsecure: allowInsecure,
		ipWhitelist:   ipWhitelist,
		resolver:      net.DefaultResolver,
	}
}

func (v *AlertTargetValidator) Validate(ctx context.Context, channel models.AlertChannel, target string) error {
	switch channel {
	case models.AlertChannelSms:
		return ValidatePhoneNumber(target)
	case models.AlertChannelWebhook:
		return v.ValidateWebhookUrl(ctx, target)
	}
	return errors.Wrapf(models.BadParameterError, "unknown alert channel %q", channel)
}

func ValidatePhoneNumber(number string) error {
	if !phoneNumberRegexp.MatchString(number) {
		return errors.Wrapf(models.ErrInvalidPhoneNumber, "%q is not in E.164 format", number)
	}
	return nil
}

// ValidateWebhookUrl rejects non https urls (unless insecure targets are allowed), urls carrying
// credentials, and hosts resolving to any reserved address.
func (v *AlertTargetValidator) ValidateWebhookUrl(ctx context.Context, rawUrl string) error {
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return errors.Wrap(models.ErrInvalidWebhookUrl, "malformed url")
	}

	switch {
	case parsed.Scheme == "https":
	case parsed.Scheme == "http" && v.allowInsecure:
	default:
		return errors.Wrapf(models.ErrInvalidWebhookUrl, "scheme %q is not allowed", parsed.Scheme)
	}
	if parsed.User != nil {
		return errors.Wrap(models.ErrInvalidWebhookUrl, "url must not contain credentials")
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.Wrap(models.ErrInvalidWebhookUrl, "url has no hostname")
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if isReservedIP(ip, v.ipWhitelist) {
			return errors.Wrap(models.ErrInvalidWebhookUrl, "url points to a reserved address")
		}
		return nil
	}

	resolveCtx, cancel := context.WithTimeout(ctx, targetResolveTimeout)
	defer cancel()
	addrs, err := v.resolver.LookupIPAddr(resolveCtx, hostname)
	if err != nil {
		return errors.Wrapf(models.ErrInvalidWebhookUrl, "could not resolve %s", hostname)
	}
	for _, addr := range addrs {
		if isReservedIP(addr.IP, v.ipWhitelist) {
			return errors.Wrap(models.ErrInvalidWebhookUrl, "url resolves to a reserved address")
		}
	}
	return nil
}
