package features

// SchemaVersion identifies the vector layout. Bump it whenever featureNames
// changes; trained models are bound to one version.
const SchemaVersion = 1

// featureNames is the versioned vector layout: six blocks, fixed order.
// Downstream models index by POSITION, so entries are never reordered or
// removed - new features append to the end under a new SchemaVersion.
var featureNames = []string{
	// URL block
	"url_length", "domain_length", "url_entropy", "has_ip_address",
	"num_subdomains", "domain_age_months", "has_at_symbol", "has_dash_symbol",
	"num_dots", "num_digits", "num_letters", "num_special_chars",
	"has_port", "has_fragment", "num_params", "has_suspicious_tld",
	"is_safe_domain", "domain_similarity", "is_https", "has_hsts",

	// HTTP block
	"status_code_category", "is_redirect", "is_error",
	"has_content_security_policy", "has_x_frame_options",
	"has_strict_transport_security", "has_x_content_type_options",
	"has_x_xss_protection", "num_cookies", "has_secure_cookie",
	"has_http_only_cookie", "has_known_server", "is_cloudflare",
	"is_html_content", "has_charset", "has_no_cache", "has_no_store",
	"content_length_log", "response_time_log",

	// HTML block
	"num_meta_tags", "has_description_meta", "has_keywords_meta",
	"num_external_scripts", "num_external_stylesheets", "num_forms",
	"has_password_form", "has_login_form", "num_links",
	"num_internal_links", "num_external_links", "internal_link_ratio",
	"num_images", "has_external_images", "num_iframes",
	"has_hidden_iframes", "num_scripts", "num_inline_scripts",

	// Content block
	"title_length", "has_title", "content_length", "content_length_log",
	"text_length", "text_to_html_ratio", "num_words", "avg_word_length",
	"has_suspicious_keywords", "suspicious_keyword_count", "has_emoji",
	"exclamation_count", "question_count", "uppercase_ratio",

	// JavaScript block
	"has_obfuscated_js", "has_eval_function", "has_document_write",
	"has_inner_html", "has_escape_function", "has_unescape_function",
	"has_fromcharcode", "has_location_replace", "has_window_location",
	"has_form_submission", "has_crypto_terms", "has_event_listeners",
	"js_content_length", "js_content_length_log",

	// Security block
	"has_no_index", "has_no_follow", "has_hidden_elements",
	"has_popup_code", "has_alert_code", "has_meta_refresh",
	"has_frameset", "has_base_href", "base_href_external",

	// SSL block
	"has_ssl", "ssl_valid_days", "ssl_is_valid", "ssl_expires_soon",
	"ssl_issuer_known", "ssl_subject_matches_domain",
}

// VectorLength is the fixed length of every vector Extract produces
var VectorLength = len(featureNames)

// FeatureNames returns a copy of the vector layout, position-aligned with
// Vector()
func FeatureNames() []string {
	names := make([]string, len(featureNames))
	copy(names, featureNames)
	return names
}

// Vector flattens the feature record into the versioned order, booleans as
// 0/1. The length and position of every entry is invariant across inputs
// and across block failures.
func (f Features) Vector() []float64 {
	v := make([]float64, 0, len(featureNames))

	u := f.URL
	v = append(v,
		float64(u.URLLength), float64(u.DomainLength), u.URLEntropy, b2f(u.HasIPAddress),
		float64(u.NumSubdomains), float64(u.DomainAgeMonths), b2f(u.HasAtSymbol), b2f(u.HasDashSymbol),
		float64(u.NumDots), float64(u.NumDigits), float64(u.NumLetters), float64(u.NumSpecialChars),
		b2f(u.HasPort), b2f(u.HasFragment), float64(u.NumParams), b2f(u.HasSuspiciousTLD),
		b2f(u.IsTrustedDomain), u.DomainSimilarity, b2f(u.IsHTTPS), b2f(u.HasHSTS),
	)

	h := f.HTTP
	v = append(v,
		float64(h.StatusCodeCategory), b2f(h.IsRedirect), b2f(h.IsError),
		b2f(h.HasContentSecurityPolicy), b2f(h.HasXFrameOptions),
		b2f(h.HasStrictTransportSecurity), b2f(h.HasXContentTypeOptions),
		b2f(h.HasXXSSProtection), float64(h.NumCookies), b2f(h.HasSecureCookie),
		b2f(h.HasHTTPOnlyCookie), b2f(h.HasKnownServer), b2f(h.IsCloudflare),
		b2f(h.IsHTMLContent), b2f(h.HasCharset), b2f(h.HasNoCache), b2f(h.HasNoStore),
		h.ContentLengthLog, h.ResponseTimeLog,
	)

	m := f.HTML
	v = append(v,
		float64(m.NumMetaTags), b2f(m.HasDescriptionMeta), b2f(m.HasKeywordsMeta),
		float64(m.NumExternalScripts), float64(m.NumExternalStylesheets), float64(m.NumForms),
		b2f(m.HasPasswordForm), b2f(m.HasLoginForm), float64(m.NumLinks),
		float64(m.NumInternalLinks), float64(m.NumExternalLinks), m.InternalLinkRatio,
		float64(m.NumImages), b2f(m.HasExternalImages), float64(m.NumIframes),
		b2f(m.HasHiddenIframes), float64(m.NumScripts), float64(m.NumInlineScripts),
	)

	c := f.Content
	v = append(v,
		float64(c.TitleLength), b2f(c.HasTitle), float64(c.ContentLength), c.ContentLengthLog,
		float64(c.TextLength), c.TextToHTMLRatio, float64(c.NumWords), c.AvgWordLength,
		b2f(c.HasSuspiciousKeywords), float64(c.SuspiciousKeywordCount), b2f(c.HasEmoji),
		float64(c.ExclamationCount), float64(c.QuestionCount), c.UppercaseRatio,
	)

	j := f.JavaScript
	v = append(v,
		b2f(j.HasObfuscatedJS), b2f(j.HasEvalFunction), b2f(j.HasDocumentWrite),
		b2f(j.HasInnerHTML), b2f(j.HasEscapeFunction), b2f(j.HasUnescapeFunction),
		b2f(j.HasFromCharCode), b2f(j.HasLocationReplace), b2f(j.HasWindowLocation),
		b2f(j.HasFormSubmission), b2f(j.HasCryptoTerms), b2f(j.HasEventListeners),
		float64(j.JSContentLength), j.JSContentLengthLog,
	)

	s := f.Security
	v = append(v,
		b2f(s.HasNoIndex), b2f(s.HasNoFollow), b2f(s.HasHiddenElements),
		b2f(s.HasPopupCode), b2f(s.HasAlertCode), b2f(s.HasMetaRefresh),
		b2f(s.HasFrameset), b2f(s.HasBaseHref), b2f(s.BaseHrefExternal),
	)

	ssl := f.SSL
	v = append(v,
		b2f(ssl.HasSSL), float64(ssl.SSLValidDays), b2f(ssl.SSLIsValid), b2f(ssl.SSLExpiresSoon),
		b2f(ssl.SSLIssuerKnown), b2f(ssl.SSLSubjectMatchesDomain),
	)

	return v
}
