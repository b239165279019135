package domain

// RoleAdmin is the only role that may edit site content.
const RoleAdmin = "admin"
