package infrastructure

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/larsan/pgha/internal/config"
)

// userDataTemplate is the cloud-init document both nodes boot with. It
// installs the database engine and the management agent. The agent
// answers the TCP health probe only while the local instance runs as
// primary, which is what steers the load balancer to exactly one node.
// The unit is installed disabled; agent registration enables it.
const userDataTemplate = `#cloud-config
package_update: true
packages:
  - postgresql-common
  - socat
runcmd:
  - /usr/share/postgresql-common/pgdg/apt.postgresql.org.sh -y
  - apt-get install -y postgresql-{{ .PGVersion }}
  - systemctl stop postgresql
  - systemctl daemon-reload
write_files:
  - path: /usr/local/bin/pgha-probe
    permissions: "0755"
    content: |
      #!/bin/sh
      # Answers the load balancer probe with HTTP 200 only when the
      # local instance is primary. Standbys answer 503.
      state=$(su -s /bin/sh postgres -c "psql -tAc 'SELECT pg_is_in_recovery()'" 2>/dev/null)
      if [ "$state" = "f" ]; then
        printf 'HTTP/1.0 200 OK\r\nContent-Length: 7\r\n\r\nprimary'
      else
        printf 'HTTP/1.0 503 Service Unavailable\r\nContent-Length: 7\r\n\r\nstandby'
      fi
  - path: /etc/systemd/system/pgha-agent.service
    permissions: "0644"
    content: |
      [Unit]
      Description=pgha management agent (primary health probe)
      After=network.target

      [Service]
      ExecStart=/usr/bin/socat TCP-LISTEN:{{ .ProbePort }},fork,reuseaddr EXEC:/usr/local/bin/pgha-probe
      Restart=always

      [Install]
      WantedBy=multi-user.target
`

type userDataParams struct {
	PGVersion string
	ProbePort int
}

// renderUserData renders the cloud-init document for a node.
func renderUserData(cfg *config.Config) (string, error) {
	tmpl, err := template.New("userdata").Parse(userDataTemplate)
	if err != nil {
		return "", fmt.Errorf("parse user data template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, userDataParams{
		PGVersion: cfg.Postgres.Version,
		ProbePort: config.ProbePort,
	})
	if err != nil {
		return "", fmt.Errorf("render user data: %w", err)
	}
	return buf.String(), nil
}
