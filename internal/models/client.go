package models

// Client represents a client row from the database.
type Client struct {
	ID           int64  `json:"id" db:"id"`
	FirstName    string `json:"first_name" db:"first_name"`
	MiddleName   string `json:"middle_name" db:"middle_name"`
	LastName     string `json:"last_name" db:"last_name"`
	Phone        string `json:"phone" db:"phone"`
	Position     string `json:"position" db:"position"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password"`
	RoleID       int64  `json:"role_id" db:"fk_client_role"`
}

// ClientDetail is a client joined with its role.
type ClientDetail struct {
	ID              int64   `json:"id" db:"id"`
	FirstName       string  `json:"first_name" db:"first_name"`
	MiddleName      string  `json:"middle_name" db:"middle_name"`
	LastName        string  `json:"last_name" db:"last_name"`
	Phone           string  `json:"phone" db:"phone"`
	Position        string  `json:"position" db:"position"`
	Email           string  `json:"email" db:"email"`
	Role            *string `json:"role" db:"role"`
	RoleDescription *string `json:"role_description" db:"description"`
} // @name ClientDetail

// CreateClientRequest is the validated body of a create request.
type CreateClientRequest struct {
	FirstName  string `json:"first_name" example:"Mark"`
	MiddleName string `json:"middle_name,omitempty" example:""`
	LastName   string `json:"last_name" example:"Hamilton"`
	Phone      string `json:"phone" example:"0411018726"`
	Position   string `json:"position" example:"Manager"`
	Email      string `json:"email,omitempty" example:"markhamil@gmail.com"`
	Password   string `json:"password,omitempty" example:"mark123"`
	RoleID     int64  `json:"role_id" example:"1"`
} // @name CreateClientRequest

// UpdateClientRequest is the validated body of an update request; ID comes
// from the path.
type UpdateClientRequest struct {
	ID         int64  `json:"id" example:"2"`
	FirstName  string `json:"first_name" example:"Mark"`
	MiddleName string `json:"middle_name,omitempty" example:""`
	LastName   string `json:"last_name" example:"Hamilton"`
	Phone      string `json:"phone" example:"0411018726"`
	Position   string `json:"position" example:"Manager"`
	Email      string `json:"email,omitempty" example:"markhamil@gmail.com"`
	RoleID     int64  `json:"role_id" example:"1"`
} // @name UpdateClientRequest

// BulkCreateClientsRequest carries several clients created in one transaction.
type BulkCreateClientsRequest struct {
	Clients []CreateClientRequest `json:"clients"`
} // @name BulkCreateClientsRequest

// DeleteClientsRequest lists the ids of clients to delete.
type DeleteClientsRequest struct {
	ClientIDs []int64 `json:"clientIds" example:"6,10,14"`
} // @name DeleteClientsRequest

// ListClientsQuery represents query parameters for listing clients.
type ListClientsQuery struct {
	Page int `form:"page" binding:"omitempty,min=1" example:"1"`
} // @name ListClientsQuery

// ClientListResponse represents the response for listing clients.
type ClientListResponse struct {
	Clients    []Client   `json:"clients"`
	Pagination Pagination `json:"pagination"`
} // @name ClientListResponse

// MessageResponse carries the outcome of a write operation.
type MessageResponse struct {
	Message      string  `json:"message" example:"client Mark with id 7 created successfully"`
	IDs          []int64 `json:"ids,omitempty"`
	RowsAffected int64   `json:"rows_affected,omitempty"`
} // @name MessageResponse

// Pagination represents pagination metadata.
type Pagination struct {
	CurrentPage  int   `json:"current_page" example:"1"`
	PageSize     int   `json:"page_size" example:"10"`
	TotalPages   int   `json:"total_pages" example:"5"`
	TotalRecords int64 `json:"total_records" example:"42"`
} // @name Pagination
