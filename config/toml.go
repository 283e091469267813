package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

const SentinelConfigTemplate = `network = "{{ .Network }}"

db_driver = "{{ .DbDriver }}"
db_host = "{{ .DbHost }}"
db_port = {{ .DbPort }}
db_username = "{{ .DbUsername }}"
db_password = "{{ .DbPassword }}"
db_schema = "{{ .DbSchema }}"

server_port = {{ .ServerPort }}
lightnode_url = "{{ .LightnodeUrl }}"
webhook_url = "{{ .WebhookUrl }}"
signing_explorer_link = "{{ .SigningExplorerLink }}"

tick_interval = "{{ .TickInterval }}"
sync_timeout = "{{ .SyncTimeout }}"
submit_timeout = "{{ .SubmitTimeout }}"
submit_concurrency = {{ .SubmitConcurrency }}
escalation_delay = "{{ .EscalationDelay }}"
verify_escalation_delay = "{{ .VerifyEscalationDelay }}"
dust_threshold = {{ .DustThreshold }}
enable_verification = {{ .EnableVerification }}

[chains]{{ range $k, $v := .Chains }}
	[chains.{{ $k }}]
	chain = "{{ $k }}"
	family = "{{ $v.Family }}"
	testnet = {{ $v.Testnet }}
	rpcs = {{ quoteList $v.Rpcs }}
	native_assets = {{ quoteList $v.NativeAssets }}
	start_state = '{{ $v.StartState }}'
	confirmation_offset = {{ $v.ConfirmationOffset }}
	log_request_limit = {{ $v.LogRequestLimit }}
	tx_explorer_link = "{{ $v.TxExplorerLink }}"
	[chains.{{ $k }}.decimals]{{ range $asset, $d := $v.Decimals }}
		{{ $asset }} = {{ $d }}{{ end }}
	[chains.{{ $k }}.gateways]{{ range $asset, $addr := $v.Gateways }}
		{{ $asset }} = "{{ $addr }}"{{ end }}
{{ end }}
`

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}

// Render writes cfg in the toml format accepted by Load.
func Render(cfg *Sentinel) (string, error) {
	tmpl, err := template.New("sentinel").Funcs(template.FuncMap{"quoteList": quoteList}).
		Parse(SentinelConfigTemplate)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, cfg); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func WriteConfigFile(path string, cfg *Sentinel) error {
	content, err := Render(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), 0600)
}
