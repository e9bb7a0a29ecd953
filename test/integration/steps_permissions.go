package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Every seeded user logs in with the same password.
const seedPassword = "integration-pw"

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	response     *http.Response
	responseBody []byte
	authToken    string
	userIDs      map[string]uuid.UUID
	orgIDs       map[string]uuid.UUID
	groupIDs     map[string]uuid.UUID
	connIDs      map[string]uuid.UUID
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{
		tc:       tc,
		userIDs:  make(map[string]uuid.UUID),
		orgIDs:   make(map[string]uuid.UUID),
		groupIDs: make(map[string]uuid.UUID),
		connIDs:  make(map[string]uuid.UUID),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a tablegate server is running$`, s.aTablegateServerIsRunning)
	sc.Step(`^an organization "([^"]*)" exists$`, s.anOrganizationExists)
	sc.Step(`^a super admin "([^"]*)" exists$`, s.aSuperAdminExists)
	sc.Step(`^a member "([^"]*)" exists in organization "([^"]*)"$`, s.aMemberExistsInOrganization)
	sc.Step(`^a group "([^"]*)" exists in organization "([^"]*)"$`, s.aGroupExistsInOrganization)
	sc.Step(`^"([^"]*)" is a member of group "([^"]*)"$`, s.userIsAMemberOfGroup)
	sc.Step(`^a saved connection "([^"]*)" exists in organization "([^"]*)"$`, s.aSavedConnectionExists)

	// Authentication steps
	sc.Step(`^I log in as "([^"]*)"$`, s.iLogInAs)

	// Grant management steps
	sc.Step(`^I grant user "([^"]*)" level "([^"]*)" on connection "([^"]*)"$`, s.iGrantUserOnConnection)
	sc.Step(`^I grant user "([^"]*)" level "([^"]*)" on connection "([^"]*)" restricted to named tables$`, s.iGrantUserOnConnectionRestricted)
	sc.Step(`^I grant user "([^"]*)" level "([^"]*)" on table "([^"]*)" of connection "([^"]*)"$`, s.iGrantUserOnTable)
	sc.Step(`^I grant group "([^"]*)" level "([^"]*)" on connection "([^"]*)"$`, s.iGrantGroupOnConnection)
	sc.Step(`^I grant group "([^"]*)" level "([^"]*)" on table "([^"]*)" of connection "([^"]*)"$`, s.iGrantGroupOnTable)
	sc.Step(`^I revoke the connection grant for user "([^"]*)" on connection "([^"]*)"$`, s.iRevokeUserConnectionGrant)

	// Access check steps
	sc.Step(`^I check access to connection "([^"]*)"$`, s.iCheckAccessToConnection)
	sc.Step(`^I check access to table "([^"]*)" on connection "([^"]*)"$`, s.iCheckAccessToTable)
	sc.Step(`^I list tables on connection "([^"]*)"$`, s.iListTablesOnConnection)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^access should be allowed with level "([^"]*)"$`, s.accessShouldBeAllowedWithLevel)
	sc.Step(`^access should be denied$`, s.accessShouldBeDenied)
}

// Background steps

func (s *StepsContext) aTablegateServerIsRunning() error {
	// Server is already running via TestContext. Grants are scenario-local
	// state, so clear them; organizations, users and connections are seeded
	// idempotently and can persist across scenarios.
	for _, table := range []string{
		"user_connection_permissions",
		"user_table_permissions",
		"group_connection_permissions",
		"group_table_permissions",
	} {
		if err := s.tc.DB.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *StepsContext) anOrganizationExists(name string) error {
	var id uuid.UUID
	err := s.tc.DB.Raw(`SELECT id FROM organizations WHERE name = ?`, name).Scan(&id).Error
	if err == nil && id != uuid.Nil {
		s.orgIDs[name] = id
		return nil
	}

	id = uuid.New()
	if err := s.tc.DB.Exec(`INSERT INTO organizations (id, name) VALUES (?, ?)`, id, name).Error; err != nil {
		return err
	}
	s.orgIDs[name] = id
	return nil
}

func (s *StepsContext) aSuperAdminExists(email string) error {
	return s.seedUser(email, "super_admin", nil)
}

func (s *StepsContext) aMemberExistsInOrganization(email, org string) error {
	orgID, ok := s.orgIDs[org]
	if !ok {
		return fmt.Errorf("unknown organization %q", org)
	}
	return s.seedUser(email, "member", &orgID)
}

func (s *StepsContext) seedUser(email, role string, orgID *uuid.UUID) error {
	var id uuid.UUID
	err := s.tc.DB.Raw(`SELECT id FROM app_users WHERE email = ?`, email).Scan(&id).Error
	if err == nil && id != uuid.Nil {
		s.userIDs[email] = id
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}

	id = uuid.New()
	if err := s.tc.DB.Exec(`
		INSERT INTO app_users (id, organization_id, name, email, role, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, orgID, email, email, role, string(hash)).Error; err != nil {
		return err
	}
	s.userIDs[email] = id
	return nil
}

func (s *StepsContext) aGroupExistsInOrganization(name, org string) error {
	orgID, ok := s.orgIDs[org]
	if !ok {
		return fmt.Errorf("unknown organization %q", org)
	}

	var id uuid.UUID
	err := s.tc.DB.Raw(`SELECT id FROM groups WHERE organization_id = ? AND name = ?`, orgID, name).Scan(&id).Error
	if err == nil && id != uuid.Nil {
		s.groupIDs[name] = id
		return nil
	}

	id = uuid.New()
	if err := s.tc.DB.Exec(`
		INSERT INTO groups (id, organization_id, name) VALUES (?, ?, ?)
	`, id, orgID, name).Error; err != nil {
		return err
	}
	s.groupIDs[name] = id
	return nil
}

func (s *StepsContext) userIsAMemberOfGroup(email, group string) error {
	userID, ok := s.userIDs[email]
	if !ok {
		return fmt.Errorf("unknown user %q", email)
	}
	groupID, ok := s.groupIDs[group]
	if !ok {
		return fmt.Errorf("unknown group %q", group)
	}

	return s.tc.DB.Exec(`
		INSERT INTO group_members (group_id, user_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, groupID, userID).Error
}

func (s *StepsContext) aSavedConnectionExists(name, org string) error {
	orgID, ok := s.orgIDs[org]
	if !ok {
		return fmt.Errorf("unknown organization %q", org)
	}

	var id uuid.UUID
	err := s.tc.DB.Raw(`SELECT id FROM saved_connections WHERE organization_id = ? AND name = ?`, orgID, name).Scan(&id).Error
	if err == nil && id != uuid.Nil {
		s.connIDs[name] = id
		return nil
	}

	// The target database does not need to be reachable; the control plane
	// never dials it.
	encrypted, err := s.tc.Cipher.EncryptString("db-password")
	if err != nil {
		return err
	}

	id = uuid.New()
	if err := s.tc.DB.Exec(`
		INSERT INTO saved_connections (id, organization_id, name, host, port, database_name, username, encrypted_password)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, orgID, name, "db.internal", 5432, "appdb", "app", encrypted).Error; err != nil {
		return err
	}
	s.connIDs[name] = id
	return nil
}

// Authentication steps

func (s *StepsContext) iLogInAs(email string) error {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": seedPassword,
	})

	if err := s.doRequest("POST", "/api/auth/login", body); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login as %s failed with status %d: %s", email, s.response.StatusCode, string(s.responseBody))
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(s.responseBody, &login); err != nil {
		return fmt.Errorf("failed to parse login response: %w", err)
	}
	if login.Token == "" {
		return fmt.Errorf("login response contained no token")
	}

	s.authToken = login.Token
	return nil
}

// Grant management steps

func (s *StepsContext) iGrantUserOnConnection(email, level, conn string) error {
	return s.grantUserConnection(email, level, conn, true)
}

func (s *StepsContext) iGrantUserOnConnectionRestricted(email, level, conn string) error {
	return s.grantUserConnection(email, level, conn, false)
}

func (s *StepsContext) grantUserConnection(email, level, conn string, allTables bool) error {
	userID, ok := s.userIDs[email]
	if !ok {
		return fmt.Errorf("unknown user %q", email)
	}
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"user_id":    userID,
		"permission": level,
		"all_tables": allTables,
	})
	return s.doRequest("POST", fmt.Sprintf("/api/connections/%s/user-permissions", connID), body)
}

func (s *StepsContext) iGrantUserOnTable(email, level, table, conn string) error {
	userID, ok := s.userIDs[email]
	if !ok {
		return fmt.Errorf("unknown user %q", email)
	}
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"table_name": table,
		"permission": level,
	})
	return s.doRequest("POST", fmt.Sprintf("/api/connections/%s/user-permissions/%s/tables", connID, userID), body)
}

func (s *StepsContext) iGrantGroupOnConnection(group, level, conn string) error {
	groupID, ok := s.groupIDs[group]
	if !ok {
		return fmt.Errorf("unknown group %q", group)
	}
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"group_id":   groupID,
		"permission": level,
		"all_tables": true,
	})
	return s.doRequest("POST", fmt.Sprintf("/api/connections/%s/group-permissions", connID), body)
}

func (s *StepsContext) iGrantGroupOnTable(group, level, table, conn string) error {
	groupID, ok := s.groupIDs[group]
	if !ok {
		return fmt.Errorf("unknown group %q", group)
	}
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}

	body, _ := json.Marshal(map[string]interface{}{
		"table_name": table,
		"permission": level,
	})
	return s.doRequest("POST", fmt.Sprintf("/api/connections/%s/group-permissions/%s/tables", connID, groupID), body)
}

func (s *StepsContext) iRevokeUserConnectionGrant(email, conn string) error {
	userID, ok := s.userIDs[email]
	if !ok {
		return fmt.Errorf("unknown user %q", email)
	}
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}

	return s.doRequest("DELETE", fmt.Sprintf("/api/connections/%s/user-permissions/%s", connID, userID), nil)
}

// Access check steps

func (s *StepsContext) iCheckAccessToConnection(conn string) error {
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}
	return s.doRequest("GET", fmt.Sprintf("/api/connections/%s/access", connID), nil)
}

func (s *StepsContext) iCheckAccessToTable(table, conn string) error {
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}
	return s.doRequest("GET", fmt.Sprintf("/api/connections/%s/access?table=%s", connID, url.QueryEscape(table)), nil)
}

func (s *StepsContext) iListTablesOnConnection(conn string) error {
	connID, ok := s.connIDs[conn]
	if !ok {
		return fmt.Errorf("unknown connection %q", conn)
	}
	return s.doRequest("GET", fmt.Sprintf("/api/connections/%s/tables", connID), nil)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(expectedStatus int) error {
	if s.response.StatusCode != expectedStatus {
		return fmt.Errorf("expected status %d, got %d: %s", expectedStatus, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) accessShouldBeAllowedWithLevel(level string) error {
	allowed, actual, err := s.parseAccess()
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("expected access to be allowed, got denied (level %q)", actual)
	}
	if actual != level {
		return fmt.Errorf("expected level %q, got %q", level, actual)
	}
	return nil
}

func (s *StepsContext) accessShouldBeDenied() error {
	allowed, actual, err := s.parseAccess()
	if err != nil {
		return err
	}
	if allowed {
		return fmt.Errorf("expected access to be denied, got allowed with level %q", actual)
	}
	return nil
}

func (s *StepsContext) parseAccess() (bool, string, error) {
	if s.response.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("access check returned status %d: %s", s.response.StatusCode, string(s.responseBody))
	}

	var access struct {
		Allowed bool   `json:"allowed"`
		Level   string `json:"level"`
	}
	if err := json.Unmarshal(s.responseBody, &access); err != nil {
		return false, "", fmt.Errorf("failed to parse access response: %w", err)
	}
	return access.Allowed, access.Level, nil
}

// doRequest issues a request with the current auth token and captures the
// response for later assertions.
func (s *StepsContext) doRequest(method, path string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, s.tc.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}

	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}
