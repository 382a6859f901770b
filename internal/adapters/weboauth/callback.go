package weboauth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// callbackParams are the values an OAuth redirect may carry in its query or fragment.
type callbackParams struct {
	AccessToken      string
	RefreshToken     string
	IDToken          string
	ExpiresIn        int64
	State            string
	Error            string
	ErrorDescription string
	// Raw holds every merged parameter; it becomes the result's RawResponse.
	Raw map[string]string
	// badExpiresIn is set when expires_in was present but not an integer.
	badExpiresIn string
}

var errNotAbsolute = errors.New("callback URL is not absolute")

// parseCallbackURL merges query and fragment parameters, fragment values winning.
func parseCallbackURL(raw string) (callbackParams, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return callbackParams{}, fmt.Errorf("parse callback url: %w", err)
	}
	if u.Scheme == "" {
		return callbackParams{}, errNotAbsolute
	}

	merged := make(map[string]string)
	mergeValues(merged, u.Query())

	if frag := u.EscapedFragment(); frag != "" {
		fv, err := url.ParseQuery(frag)
		if err != nil {
			return callbackParams{}, fmt.Errorf("parse callback fragment: %w", err)
		}
		mergeValues(merged, fv)
	}

	p := callbackParams{
		AccessToken:      merged["access_token"],
		RefreshToken:     merged["refresh_token"],
		IDToken:          merged["id_token"],
		State:            merged["state"],
		Error:            merged["error"],
		ErrorDescription: merged["error_description"],
		Raw:              merged,
	}
	if s, ok := merged["expires_in"]; ok && s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			p.badExpiresIn = s
		} else {
			p.ExpiresIn = n
		}
	}
	return p, nil
}

// mergeValues copies vals into dst; for repeated keys the last value wins.
func mergeValues(dst map[string]string, vals url.Values) {
	for k, vs := range vals {
		if len(vs) == 0 {
			continue
		}
		dst[k] = vs[len(vs)-1]
	}
}
