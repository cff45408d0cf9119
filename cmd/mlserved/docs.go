package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           mlserved API
// @version         1.0
// @description     HTTP API for creating, training and querying machine learning services.
//
// @contact.name   mlserved maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
