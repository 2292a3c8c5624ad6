package oauth

// WebflowConfig holds Webflow OAuth configuration.
type WebflowConfig struct {
	ClientID     string   `env:"WEBFLOW_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"WEBFLOW_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"WEBFLOW_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"WEBFLOW_OAUTH_SCOPES" envSeparator:","`
}
