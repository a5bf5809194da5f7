package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/league --output domain/league --outpkg leaguemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name StatsProvider --dir ../usecase --inpackage --testonly --output ../usecase --filename mock_stats_provider_test.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TeamRatingProvider --dir ../usecase --inpackage --testonly --output ../usecase --filename mock_team_rating_provider_test.go
