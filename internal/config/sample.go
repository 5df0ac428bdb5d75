package config

// SampleConfig returns a fully documented configuration file
func SampleConfig() string {
	return `# DocSum configuration
version: "1.0"

# Document Service: the external API that summarizes PDFs and answers questions
service:
  base_url: "http://localhost:8000"
  timeout: 120s        # per-request deadline; expiry is reported as a timeout
  health_timeout: 5s
  cache_ttl: 10m       # in-memory summary cache, 0 disables

# Account gating through the identity provider
auth:
  required: true
  api_key: ""          # or DOCSUM_AUTH_API_KEY
  identity_url: "https://identitytoolkit.googleapis.com/v1"
  token_url: "https://securetoken.googleapis.com/v1"
  credentials_path: "~/.config/docsum/credentials.json"
  timeout: 15s

# Contact form delivery
contact:
  provider: "emailjs"  # emailjs|smtp
  to_email: ""
  emailjs:
    endpoint: "https://api.emailjs.com/api/v1.0/email/send"
    service_id: ""
    template_id: ""
    public_key: ""
    access_token: ""
  smtp:
    host: ""
    port: 587
    username: ""
    password: ""
    from: ""

output:
  default_format: "text"  # text|json|markdown
  color_mode: "auto"      # auto|always|never
  verbose: false

ui:
  theme: "default"        # default|high-contrast|minimal

log:
  file: "~/.cache/docsum/docsum.log"
  level: "info"           # debug|info|warn|error
  max_size_mb: 10
  max_backups: 5
  max_age_days: 30

server:
  addr: ":8080"
  read_timeout: 30s
  write_timeout: 150s
  shutdown_timeout: 10s
`
}

// MinimalSampleConfig returns a compact configuration with only essential settings
func MinimalSampleConfig() string {
	return `version: "1.0"
service:
  base_url: "http://localhost:8000"
auth:
  api_key: ""
`
}
