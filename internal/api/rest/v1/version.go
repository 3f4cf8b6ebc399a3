package v1

// BasePath is the route prefix of API version 1
const BasePath = "/api/v1"
