//go:generate mockgen -source=../quote_repository.go -destination=./mock_quote_repository.go -package=mocks
//go:generate mockgen -source=../quote_cache.go      -destination=./mock_quote_cache.go      -package=mocks
//go:generate mockgen -source=../validator.go        -destination=./mock_validator.go        -package=mocks
//go:generate mockgen -source=../quote_publisher.go  -destination=./mock_quote_publisher.go  -package=mocks
//go:generate mockgen -source=../quote_service.go    -destination=./mock_quote_service.go    -package=mocks

package mocks
