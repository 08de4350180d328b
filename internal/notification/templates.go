package notification

import (
	"fmt"
	"html"

	"github.com/tendant/contextauth/pkg/auth"
)

// Render builds the message for kind from payload. Missing payload keys
// render as empty strings.
func Render(kind auth.NotificationKind, payload map[string]string) (Message, error) {
	get := func(key string) string { return payload[key] }
	esc := func(key string) string { return html.EscapeString(payload[key]) }

	switch kind {
	case auth.NotifyLoginOTP:
		return Message{
			Subject: "Your login code",
			Text: fmt.Sprintf("Your login code is %s.\nIt expires in %s minutes. If you did not try to sign in, you can ignore this email.",
				get("code"), get("ttlMinutes")),
			HTML: fmt.Sprintf(`<html><body>
		<h2>Your login code</h2>
		<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
		<p>This code expires in %s minutes.</p>
		<p>If you did not try to sign in, you can ignore this email.</p>
	</body></html>`, esc("code"), esc("ttlMinutes")),
		}, nil

	case auth.NotifyEmailVerification:
		return Message{
			Subject: "Verify your email address",
			Text:    fmt.Sprintf("Your email verification code is %s.", get("code")),
			HTML: fmt.Sprintf(`<html><body>
		<h2>Verify your email address</h2>
		<p>Enter this code to verify your email address:</p>
		<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
	</body></html>`, esc("code")),
		}, nil

	case auth.NotifyLoginAlert:
		return Message{
			Subject: "New sign-in to your account",
			Text: fmt.Sprintf("Your account was signed in to at %s from device %s near %s.\nIf this was not you, change your password.",
				get("time"), get("deviceId"), get("location")),
			HTML: fmt.Sprintf(`<html><body>
		<h2>New sign-in to your account</h2>
		<p>Time: %s<br>Device: %s<br>Location: %s</p>
		<p>If this was not you, change your password.</p>
	</body></html>`, esc("time"), esc("deviceId"), esc("location")),
		}, nil

	case auth.NotifySuspensionAlert:
		return Message{
			Subject: "Your account has been suspended",
			Text: fmt.Sprintf("A sign-in from device %s near %s looked unusual, so your account is suspended until %s.",
				get("deviceId"), get("location"), get("until")),
			HTML: fmt.Sprintf(`<html><body>
		<h2>Your account has been suspended</h2>
		<p>A sign-in from device %s near %s looked unusual.</p>
		<p>Your account is suspended until %s.</p>
	</body></html>`, esc("deviceId"), esc("location"), esc("until")),
		}, nil
	}

	return Message{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}
