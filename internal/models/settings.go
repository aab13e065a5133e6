package models

// FooterSettings is the singleton record of external links shown in the site footer.
type FooterSettings struct {
	PrivacyPolicyURL       string `firestore:"privacyPolicyUrl,omitempty" json:"privacyPolicyUrl"`
	TermsOfServiceURL      string `firestore:"termsOfServiceUrl,omitempty" json:"termsOfServiceUrl"`
	AffiliateDisclaimerURL string `firestore:"affiliateDisclaimerUrl,omitempty" json:"affiliateDisclaimerUrl"`
	TwitterURL             string `firestore:"twitterUrl,omitempty" json:"twitterUrl"`
	GithubURL              string `firestore:"githubUrl,omitempty" json:"githubUrl"`
	LinkedinURL            string `firestore:"linkedinUrl,omitempty" json:"linkedinUrl"`
	YoutubeURL             string `firestore:"youtubeUrl,omitempty" json:"youtubeUrl"`
}

// MergeOver returns s with every empty field taken from defaults.
func (s FooterSettings) MergeOver(defaults FooterSettings) FooterSettings {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return FooterSettings{
		PrivacyPolicyURL:       pick(s.PrivacyPolicyURL, defaults.PrivacyPolicyURL),
		TermsOfServiceURL:      pick(s.TermsOfServiceURL, defaults.TermsOfServiceURL),
		AffiliateDisclaimerURL: pick(s.AffiliateDisclaimerURL, defaults.AffiliateDisclaimerURL),
		TwitterURL:             pick(s.TwitterURL, defaults.TwitterURL),
		GithubURL:              pick(s.GithubURL, defaults.GithubURL),
		LinkedinURL:            pick(s.LinkedinURL, defaults.LinkedinURL),
		YoutubeURL:             pick(s.YoutubeURL, defaults.YoutubeURL),
	}
}

// FooterSettingsPatch carries a partial update; nil fields are left untouched.
type FooterSettingsPatch struct {
	PrivacyPolicyURL       *string `json:"privacyPolicyUrl,omitempty" validate:"omitnil,link_target"`
	TermsOfServiceURL      *string `json:"termsOfServiceUrl,omitempty" validate:"omitnil,link_target"`
	AffiliateDisclaimerURL *string `json:"affiliateDisclaimerUrl,omitempty" validate:"omitnil,link_target"`
	TwitterURL             *string `json:"twitterUrl,omitempty" validate:"omitnil,link_target"`
	GithubURL              *string `json:"githubUrl,omitempty" validate:"omitnil,link_target"`
	LinkedinURL            *string `json:"linkedinUrl,omitempty" validate:"omitnil,link_target"`
	YoutubeURL             *string `json:"youtubeUrl,omitempty" validate:"omitnil,link_target"`
}

// Fields returns the provided fields keyed by their stored field name.
func (p FooterSettingsPatch) Fields() map[string]string {
	out := make(map[string]string)
	add := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	add("privacyPolicyUrl", p.PrivacyPolicyURL)
	add("termsOfServiceUrl", p.TermsOfServiceURL)
	add("affiliateDisclaimerUrl", p.AffiliateDisclaimerURL)
	add("twitterUrl", p.TwitterURL)
	add("githubUrl", p.GithubURL)
	add("linkedinUrl", p.LinkedinURL)
	add("youtubeUrl", p.YoutubeURL)
	return out
}

// Apply writes the provided fields of p onto s.
func (p FooterSettingsPatch) Apply(s FooterSettings) FooterSettings {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.PrivacyPolicyURL, p.PrivacyPolicyURL)
	set(&s.TermsOfServiceURL, p.TermsOfServiceURL)
	set(&s.AffiliateDisclaimerURL, p.AffiliateDisclaimerURL)
	set(&s.TwitterURL, p.TwitterURL)
	set(&s.GithubURL, p.GithubURL)
	set(&s.LinkedinURL, p.LinkedinURL)
	set(&s.YoutubeURL, p.YoutubeURL)
	return s
}
