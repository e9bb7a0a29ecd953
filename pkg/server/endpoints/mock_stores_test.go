package endpoints

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tablegate/tablegate/pkg/model"
	"github.com/tablegate/tablegate/pkg/permission"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func NewMockUsersStore() *MockUsersStore {
	return &MockUsersStore{}
}

func (m *MockUsersStore) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUsersStore) UserByID(id uuid.UUID) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) UserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) ListUsers(organizationID uuid.UUID) ([]model.User, error) {
	args := m.Called(organizationID)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUsersStore) UpdatePassword(id uuid.UUID, passwordHash string) error {
	args := m.Called(id, passwordHash)
	return args.Error(0)
}

// MockOrganizationsStore implements store.OrganizationsStore for testing
type MockOrganizationsStore struct {
	mock.Mock
}

func NewMockOrganizationsStore() *MockOrganizationsStore {
	return &MockOrganizationsStore{}
}

func (m *MockOrganizationsStore) CreateOrganization(org *model.Organization) error {
	args := m.Called(org)
	return args.Error(0)
}

func (m *MockOrganizationsStore) OrganizationByID(id uuid.UUID) (*model.Organization, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *MockOrganizationsStore) ListOrganizations() ([]model.Organization, error) {
	args := m.Called()
	return args.Get(0).([]model.Organization), args.Error(1)
}

// MockGroupsStore implements store.GroupsStore for testing
type MockGroupsStore struct {
	mock.Mock
}

func NewMockGroupsStore() *MockGroupsStore {
	return &MockGroupsStore{}
}

func (m *MockGroupsStore) CreateGroup(group *model.Group) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockGroupsStore) GroupByID(id uuid.UUID) (*model.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupsStore) ListGroups(organizationID uuid.UUID) ([]model.Group, error) {
	args := m.Called(organizationID)
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupsStore) AddMember(groupID, userID uuid.UUID) error {
	args := m.Called(groupID, userID)
	return args.Error(0)
}

func (m *MockGroupsStore) RemoveMember(groupID, userID uuid.UUID) (bool, error) {
	args := m.Called(groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupsStore) ListMembers(groupID uuid.UUID) ([]model.User, error) {
	args := m.Called(groupID)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockGroupsStore) GroupIDsForUser(userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockConnectionsStore implements store.ConnectionsStore for testing
type MockConnectionsStore struct {
	mock.Mock
}

func NewMockConnectionsStore() *MockConnectionsStore {
	return &MockConnectionsStore{}
}

func (m *MockConnectionsStore) CreateConnection(conn *model.Connection) error {
	args := m.Called(conn)
	return args.Error(0)
}

func (m *MockConnectionsStore) ConnectionByID(id uuid.UUID) (*model.Connection, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *MockConnectionsStore) ListConnections(user *model.User) ([]model.Connection, error) {
	args := m.Called(user)
	return args.Get(0).([]model.Connection), args.Error(1)
}

func (m *MockConnectionsStore) DeleteConnection(id uuid.UUID) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

// MockGrantsStore implements store.GrantsStore for testing
type MockGrantsStore struct {
	mock.Mock
}

func NewMockGrantsStore() *MockGrantsStore {
	return &MockGrantsStore{}
}

func (m *MockGrantsStore) GrantUserConnection(userID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.UserConnectionGrant, error) {
	args := m.Called(userID, connectionID, level, allTables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserConnectionGrant), args.Error(1)
}

func (m *MockGrantsStore) RevokeUserConnection(userID, connectionID uuid.UUID) (bool, error) {
	args := m.Called(userID, connectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantsStore) ListUserConnectionGrants(connectionID uuid.UUID) ([]model.UserConnectionGrant, error) {
	args := m.Called(connectionID)
	return args.Get(0).([]model.UserConnectionGrant), args.Error(1)
}

func (m *MockGrantsStore) GrantUserTable(userID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.UserTableGrant, error) {
	args := m.Called(userID, connectionID, table, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserTableGrant), args.Error(1)
}

func (m *MockGrantsStore) RevokeUserTable(userID, connectionID uuid.UUID, table string) (bool, error) {
	args := m.Called(userID, connectionID, table)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantsStore) ListUserTableGrants(userID, connectionID uuid.UUID) ([]model.UserTableGrant, error) {
	args := m.Called(userID, connectionID)
	return args.Get(0).([]model.UserTableGrant), args.Error(1)
}

func (m *MockGrantsStore) GrantGroupConnection(groupID, connectionID uuid.UUID, level permission.AccessLevel, allTables bool) (*model.GroupConnectionGrant, error) {
	args := m.Called(groupID, connectionID, level, allTables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupConnectionGrant), args.Error(1)
}

func (m *MockGrantsStore) RevokeGroupConnection(groupID, connectionID uuid.UUID) (bool, error) {
	args := m.Called(groupID, connectionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantsStore) ListGroupConnectionGrants(connectionID uuid.UUID) ([]model.GroupConnectionGrant, error) {
	args := m.Called(connectionID)
	return args.Get(0).([]model.GroupConnectionGrant), args.Error(1)
}

func (m *MockGrantsStore) GrantGroupTable(groupID, connectionID uuid.UUID, table string, level permission.AccessLevel) (*model.GroupTableGrant, error) {
	args := m.Called(groupID, connectionID, table, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupTableGrant), args.Error(1)
}

func (m *MockGrantsStore) RevokeGroupTable(groupID, connectionID uuid.UUID, table string) (bool, error) {
	args := m.Called(groupID, connectionID, table)
	return args.Bool(0), args.Error(1)
}

func (m *MockGrantsStore) ListGroupTableGrants(groupID, connectionID uuid.UUID) ([]model.GroupTableGrant, error) {
	args := m.Called(groupID, connectionID)
	return args.Get(0).([]model.GroupTableGrant), args.Error(1)
}

// MockAuthzStore implements store.AuthzStore for testing
type MockAuthzStore struct {
	mock.Mock
}

func NewMockAuthzStore() *MockAuthzStore {
	return &MockAuthzStore{}
}

func (m *MockAuthzStore) ResolveTableAccess(user *model.User, connectionID uuid.UUID, table string) (permission.Decision, error) {
	args := m.Called(user, connectionID, table)
	return args.Get(0).(permission.Decision), args.Error(1)
}

func (m *MockAuthzStore) ResolveConnectionAccess(user *model.User, connectionID uuid.UUID) (permission.Decision, error) {
	args := m.Called(user, connectionID)
	return args.Get(0).(permission.Decision), args.Error(1)
}

func (m *MockAuthzStore) LoadSnapshot(userID, connectionID uuid.UUID, table string) (permission.Snapshot, error) {
	args := m.Called(userID, connectionID, table)
	return args.Get(0).(permission.Snapshot), args.Error(1)
}

// MockHealthStore implements store.HealthStore for testing
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}
